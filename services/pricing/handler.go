package pricing

import (
	"net/http"

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
	r.API.GET("/rates", h.list)
	r.API.GET("/rates/:material", h.get)
	r.API.PUT("/rates/:material", h.upsert)
}

func (h *Handler) list(c *gin.Context) {
	rates, err := h.svc.ListRates(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *Handler) get(c *gin.Context) {
	rate, err := h.svc.GetRate(c.Request.Context(), c.Param("material"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *Handler) upsert(c *gin.Context) {
	var req UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	rate, err := h.svc.UpsertRate(c.Request.Context(), c.Param("material"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
