package dashboard

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
	r.API.GET("/dashboard", h.get)
}

func (h *Handler) get(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Dashboard(c.Request.Context(), recyclerID, h.now()))
}
