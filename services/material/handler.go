package material

import (
	"net/http"
	"time"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/httpapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *httpapi.Router) {
	r.API.POST("/material-logs", h.record)
	r.API.GET("/material-logs", h.list)
}

func (h *Handler) record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	// Organizers weigh drop-offs on behalf of recyclers at events.
	recyclerID, err := httpapi.ResolveRecycler(c, req.RecyclerID, auth.RoleOrganizer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	req.RecyclerID = recyclerID

	log, err := h.svc.RecordMaterial(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *Handler) list(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	from, to, err := httpapi.DateRange(c, h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), recyclerID, from, to)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
