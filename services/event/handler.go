package event

import (
	"net/http"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/httpapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *httpapi.Router) {
	r.API.GET("/events", h.listEligible)
	r.API.GET("/events/joined", h.listJoined)
	r.API.POST("/events", h.create)
	r.API.GET("/events/:eventId", h.get)
	r.API.POST("/events/:eventId/join", h.join)
	r.API.POST("/events/:eventId/cancel", h.cancel)
	r.API.POST("/events/:eventId/participants/:recyclerId/check-in", h.checkIn)
	r.API.GET("/participations/:id/transitions", h.history)
}

func (h *Handler) listEligible(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	events, err := h.svc.ListEligibleEvents(c.Request.Context(), recyclerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) listJoined(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	events, err := h.svc.ListJoinedEvents(c.Request.Context(), recyclerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	e, err := h.svc.CreateEvent(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.svc.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) join(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.svc.Join(c.Request.Context(), recyclerID, c.Param("eventId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) cancel(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.svc.Cancel(c.Request.Context(), recyclerID, c.Param("eventId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) checkIn(c *gin.Context) {
	s, err := httpapi.Session(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.svc.CheckIn(c.Request.Context(), s.Subject, c.Param("eventId"), c.Param("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) history(c *gin.Context) {
	p, err := h.svc.GetParticipation(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Organizers audit the participants they check in.
	if _, err := httpapi.ResolveRecycler(c, p.RecyclerID, auth.RoleOrganizer); err != nil {
		_ = c.Error(err)
		return
	}

	history, err := h.svc.History(c.Request.Context(), p.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}
