package ledger

import (
	"context"
	"errors"
	"fmt"

	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/taskname"
	materialtask "community-recycle-tracker/services/material/task"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TaskHandler struct {
	ledger     *Service
	reconciler *Reconciler
}

func NewTaskHandler(svc *Service, r *Reconciler) *TaskHandler {
	return &TaskHandler{ledger: svc, reconciler: r}
}

func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(taskname.MaterialRecorded, h.HandleMaterialRecorded)
	mux.HandleFunc(taskname.LedgerReconcile, h.HandleReconcile)
}

func creditFor(logID, recyclerID, receipt string, amount decimal.Decimal, source string) CreditRequest {
	return CreditRequest{
		RecyclerID:  recyclerID,
		Amount:      amount,
		ReferenceID: logID,
		Description: "material " + receipt,
		Metadata:    map[string]any{"receipt_code": receipt, "source": source},
	}
}

// HandleMaterialRecorded credits the earnings of one material log.
func (h *TaskHandler) HandleMaterialRecorded(ctx context.Context, t *asynq.Task) error {
	p, err := materialtask.ParseMaterialRecorded(t)
	if err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	zapLog := logger.FromContext(ctx).With(zap.String("material_log_id", p.MaterialLogID))

	amount, err := decimal.NewFromString(p.Earnings)
	if err != nil {
		return fmt.Errorf("invalid earnings %q: %v: %w", p.Earnings, err, asynq.SkipRetry)
	}
	if !amount.IsPositive() {
		zapLog.Info("no earnings to credit")
		return nil
	}

	_, _, err = h.ledger.Credit(ctx, creditFor(p.MaterialLogID, p.RecyclerID, p.ReceiptCode, amount, "task"))
	if err != nil {
		if errors.Is(err, errutil.ErrStoreUnavailable) {
			return err
		}
		if be := errutil.FromError(err); be.Code == errutil.StatusBadRequest {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

func (h *TaskHandler) HandleReconcile(ctx context.Context, t *asynq.Task) error {
	_, err := h.reconciler.Reconcile(ctx)
	return err
}
