package earnings

import (
	"net/http"
	"time"

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
	r.API.GET("/earnings", h.daily)
	r.API.GET("/earnings/weekly", h.weekly)
}

func (h *Handler) daily(c *gin.Context) {
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

	series, err := h.svc.DailyEarnings(c.Request.Context(), recyclerID, from, to)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) weekly(c *gin.Context) {
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

	series, err := h.svc.WeeklyEarnings(c.Request.Context(), recyclerID, from, to)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, series)
}
