package httpapi

import (
	"net/http"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/authz"
	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/health"
	"community-recycle-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(NewEngine, NewRouter),
	fx.Invoke(registerHealthEndpoint),
)

// Router exposes the authenticated route group to service handlers.
type Router struct {
	API *gin.RouterGroup
}

func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Error())
	r.HandleMethodNotAllowed = true

	return r
}

type routerParams struct {
	fx.In
	Engine     *gin.Engine
	Tokens     *auth.Tokens
	Authorizer authz.Authorizer
}

func NewRouter(p routerParams) *Router {
	return &Router{
		API: p.Engine.Group("/", middleware.Authenticate(p.Tokens), middleware.Authorize(p.Authorizer)),
	}
}

func registerHealthEndpoint(r *gin.Engine, h health.HealthService) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/liveness", h.Liveness)
	r.GET("/health/readiness", h.Readiness)
}
