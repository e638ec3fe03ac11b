package ledger

import (
	"net/http"
	"strconv"

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
	r.API.GET("/ledger/balance", h.balance)
	r.API.GET("/ledger/entries", h.entries)
	r.API.GET("/ledger/verify", h.verify)
}

func (h *Handler) balance(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	b, err := h.svc.GetBalance(c.Request.Context(), recyclerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) entries(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			_ = c.Error(errutil.BadRequest("limit must be a non-negative integer", err))
			return
		}
	}

	entries, err := h.svc.ListEntries(c.Request.Context(), recyclerID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) verify(c *gin.Context) {
	recyclerID, err := httpapi.ResolveRecycler(c, c.Query("recyclerId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	report, err := h.svc.VerifyChain(c.Request.Context(), recyclerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
