package ledger

import (
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/httpapi"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	db.Models(&LedgerEntry{}, &Balance{}),
	fx.Provide(NewService),
)

var HTTP = fx.Module("ledger.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)

// Worker wires the ledger task handlers and the daily reconcile schedule
// into the asynq server.
var Worker = fx.Module("ledger.worker",
	fx.Provide(
		NewLogSource,
		NewReconciler,
		NewTaskHandler,
		NewScheduler,
	),
	fx.Invoke(
		func(h *TaskHandler, mux *asynq.ServeMux) { h.Register(mux) },
		StartScheduler,
	),
)
