package earnings

import (
	"community-recycle-tracker/pkg/httpapi"
	"community-recycle-tracker/services/material"

	"go.uber.org/fx"
)

var Module = fx.Module("earnings.service",
	fx.Provide(
		func(s *material.Service) LogLister { return s },
		NewService,
	),
)

var HTTP = fx.Module("earnings.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
