package recycler

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
	r.API.POST("/recyclers", h.register)
	r.API.GET("/recyclers/:id", h.get)
	r.API.GET("/recyclers/:id/verification", h.verification)
	r.API.PATCH("/recyclers/:id/verification", h.setVerification)
	r.API.PUT("/recyclers/:id/photo", h.uploadPhoto)
	r.API.GET("/recyclers/:id/photo", h.photo)
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	r, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) get(c *gin.Context) {
	id, err := httpapi.ResolveRecycler(c, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	r, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) verification(c *gin.Context) {
	id, err := httpapi.ResolveRecycler(c, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	v, err := h.svc.VerificationStatus(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) setVerification(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		_ = c.Error(errutil.BadRequest("verified flag is required", err))
		return
	}

	v, err := h.svc.SetVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id, err := httpapi.ResolveRecycler(c, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(errutil.BadRequest("multipart field 'file' is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(errutil.BadRequest("unreadable upload", err))
		return
	}
	defer f.Close()

	if err := h.svc.UploadPhoto(c.Request.Context(), id, fh.Header.Get("Content-Type"), f, fh.Size); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) photo(c *gin.Context) {
	id, err := httpapi.ResolveRecycler(c, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := h.svc.PhotoURL(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, u.String())
}
