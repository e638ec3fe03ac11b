package material

import (
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("material.service",
	db.Models(&MaterialLog{}),
	fx.Provide(NewService),
)

var HTTP = fx.Module("material.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
