package pricing

import (
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	db.Models(&MaterialRate{}),
	fx.Provide(
		NewService,
		func(s *Service) Quoter { return s },
	),
)

var HTTP = fx.Module("pricing.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
