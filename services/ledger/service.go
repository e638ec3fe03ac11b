package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	node    *snowflake.Node
	timeout time.Duration
	now     func() time.Time

	ledger  repository.Repository[LedgerEntry]
	balance repository.Repository[Balance]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	timeout := repository.WithTimeout(p.Config.Database.QueryTimeout)
	return &Service{
		db:      p.DB,
		node:    p.Node,
		timeout: p.Config.Database.QueryTimeout,
		now:     func() time.Time { return time.Now().UTC() },

		ledger:  repository.ProvideStore[LedgerEntry](p.DB, timeout),
		balance: repository.ProvideStore[Balance](p.DB, timeout),
	}
}

func (s *Service) GetBalance(ctx context.Context, recyclerID string) (*Balance, error) {
	b, err := s.balance.FindOne(ctx, &Balance{RecyclerID: recyclerID})
	if err != nil {
		logger.FromContext(ctx).Error("failed to query balance", zap.String("recycler_id", recyclerID), zap.Error(err))
		return nil, err
	}
	if b == nil {
		return &Balance{RecyclerID: recyclerID, Balance: decimal.Zero}, nil
	}
	return b, nil
}

// ListEntries returns the recycler's chain in order.
func (s *Service) ListEntries(ctx context.Context, recyclerID string, limit int) ([]*LedgerEntry, error) {
	return s.ledger.Find(ctx, &LedgerEntry{RecyclerID: recyclerID},
		option.WithSortBy(option.QuerySortBy{SortBy: "sequence", OrderBy: "asc"}),
		option.WithLimit(limit),
	)
}

// HasReferences returns the subset of ids that already have an entry.
func (s *Service) HasReferences(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	entries, err := s.ledger.Find(ctx, &LedgerEntry{}, option.ApplyOperator(option.Condition{
		Field:    "reference_id",
		Operator: option.IN,
		Value:    ids,
	}))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.ReferenceID] = true
	}
	return out, nil
}

// Credit appends a credit to the recycler's chain. A reference that was
// already credited returns the existing entry and created=false.
func (s *Service) Credit(ctx context.Context, req CreditRequest) (entry *LedgerEntry, created bool, err error) {
	zapLog := logger.FromContext(ctx).With(
		zap.String("recycler_id", req.RecyclerID),
		zap.String("reference_id", req.ReferenceID),
	)

	if req.RecyclerID == "" || req.ReferenceID == "" {
		return nil, false, errutil.BadRequest("recycler and reference are required", nil)
	}
	if !req.Amount.IsPositive() {
		return nil, false, errutil.BadRequest("credit amount must be positive", nil)
	}

	exist, err := s.ledger.FindOne(ctx, &LedgerEntry{ReferenceID: req.ReferenceID})
	if err != nil {
		return nil, false, err
	}
	if exist != nil {
		zapLog.Info("reference already credited")
		return exist, false, nil
	}

	transactionID, err := GenerateTransactionID(s.now())
	if err != nil {
		zapLog.Error("failed to generate transactionId", zap.Error(err))
		return nil, false, err
	}

	var meta datatypes.JSON
	if len(req.Metadata) > 0 {
		b, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, false, errutil.BadRequest("invalid metadata", err)
		}
		meta = datatypes.JSON(b)
	}

	err = repository.Transaction(ctx, s.db, s.timeout, func(tx *gorm.DB) error {
		ledgerTx := s.ledger.WithTrx(tx)
		balanceTx := s.balance.WithTrx(tx)

		balance, err := balanceTx.FindOne(ctx, &Balance{RecyclerID: req.RecyclerID}, option.WithLockingUpdate())
		if err != nil {
			return err
		}

		last, err := ledgerTx.FindOne(ctx, &LedgerEntry{RecyclerID: req.RecyclerID},
			option.WithSortBy(option.QuerySortBy{SortBy: "sequence", OrderBy: "desc"}),
			option.WithLockingUpdate(),
		)
		if err != nil {
			return err
		}

		var prevHash string
		var seq int64 = 1
		if last != nil {
			prevHash = last.Hash
			seq = last.Sequence + 1
		}

		now := s.now()
		entry = NewLedgerEntry(LedgerParams{
			LedgerID:      s.node.Generate().String(),
			RecyclerID:    req.RecyclerID,
			Sequence:      seq,
			Type:          EntryTypeCredit,
			Amount:        req.Amount.Round(2),
			ReferenceID:   req.ReferenceID,
			TransactionID: transactionID,
			Description:   req.Description,
			PreviousHash:  prevHash,
			Metadata:      meta,
			CreatedAt:     now,
		})

		if err := ledgerTx.Create(ctx, entry); err != nil {
			return err
		}

		if balance == nil {
			return balanceTx.Create(ctx, &Balance{
				ID:          s.node.Generate().String(),
				RecyclerID:  req.RecyclerID,
				Balance:     entry.Amount,
				EntryCount:  1,
				LastEntryID: entry.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}

		return balanceTx.Update(ctx, balance.ID, map[string]any{
			"balance":       balance.Balance.Add(entry.Amount),
			"entry_count":   gorm.Expr("entry_count + ?", 1),
			"last_entry_id": entry.ID,
			"updated_at":    now,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent credit of the same reference.
		exist, findErr := s.ledger.FindOne(ctx, &LedgerEntry{ReferenceID: req.ReferenceID})
		if findErr == nil && exist != nil {
			return exist, false, nil
		}
	}
	if err != nil {
		zapLog.Error("failed to credit ledger", zap.Error(err))
		return nil, false, err
	}

	zapLog.Info("ledger credited",
		zap.String("entry_id", entry.ID),
		zap.Int64("sequence", entry.Sequence),
		zap.String("amount", entry.Amount.String()),
	)
	return entry, true, nil
}

// VerifyChain recomputes every hash in the recycler's chain and checks the
// links and the stored balance.
func (s *Service) VerifyChain(ctx context.Context, recyclerID string) (*ChainReport, error) {
	entries, err := s.ListEntries(ctx, recyclerID, 0)
	if err != nil {
		return nil, err
	}

	report := &ChainReport{RecyclerID: recyclerID, Valid: true, Entries: len(entries), Total: decimal.Zero}
	broken := func(e *LedgerEntry, reason string) (*ChainReport, error) {
		report.Valid = false
		report.BrokenAt = e.ID
		report.Reason = reason
		logger.FromContext(ctx).Warn("ledger chain broken",
			zap.String("recycler_id", recyclerID),
			zap.String("entry_id", e.ID),
			zap.String("reason", reason),
		)
		return report, nil
	}

	var prev *LedgerEntry
	for _, e := range entries {
		wantSeq, wantPrev := int64(1), ""
		if prev != nil {
			wantSeq, wantPrev = prev.Sequence+1, prev.Hash
		}

		if e.Sequence != wantSeq {
			return broken(e, "sequence gap")
		}
		if e.PreviousHash != wantPrev {
			return broken(e, "previous hash mismatch")
		}
		if e.GenerateHash() != e.Hash {
			return broken(e, "hash mismatch")
		}

		report.Total = report.Total.Add(e.Amount)
		prev = e
	}

	b, err := s.GetBalance(ctx, recyclerID)
	if err != nil {
		return nil, err
	}
	if !b.Balance.Equal(report.Total) {
		report.Valid = false
		report.Reason = "balance does not match entries"
	}
	return report, nil
}
