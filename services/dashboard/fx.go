package dashboard

import (
	"community-recycle-tracker/pkg/httpapi"
	"community-recycle-tracker/services/earnings"
	"community-recycle-tracker/services/event"

	"go.uber.org/fx"
)

var Module = fx.Module("dashboard",
	fx.Provide(
		func(s *earnings.Service) EarningsSource { return s },
		func(s *event.Service) EventSource { return s },
		NewService,
		NewHandler,
	),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
