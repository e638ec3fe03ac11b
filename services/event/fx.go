package event

import (
	"community-recycle-tracker/pkg/db"
	"community-recycle-tracker/pkg/httpapi"
	"community-recycle-tracker/services/recycler"

	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	db.Models(&Event{}, &Participation{}, &ParticipationTransition{}),
	fx.Provide(
		NewPolicyResolver,
		func(s *recycler.Service) RecyclerLookup { return s },
		NewService,
	),
)

var HTTP = fx.Module("event.http",
	fx.Provide(NewHandler),
	fx.Invoke(func(h *Handler, r *httpapi.Router) { h.RegisterRoutes(r) }),
)
