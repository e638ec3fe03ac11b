package recycler

import (
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("recycler.service",
	db.Models(&Recycler{}),
	fx.Provide(NewService),
)

var HTTP = fx.Module("recycler.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
