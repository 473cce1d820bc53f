package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/dkeye/LiveTranslate/internal/adapters/signal"
	"github.com/dkeye/LiveTranslate/internal/app/orch"
	"github.com/dkeye/LiveTranslate/internal/auth"
	"github.com/dkeye/LiveTranslate/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// originAllowed reports whether a browser origin may open the signaling socket.
// Requests without an Origin header come from non-browser clients.
func originAllowed(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// SetupRouter wires the HTTP surface. authn may be nil when no identity
// provider is configured; /auth/user then always reports anonymous.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, authn *auth.Authenticator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	if len(cfg.Origins) > 0 {
		r.Use(corsMiddleware(cfg.Origins))
	}

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Mode == "release",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("LiveTranslateSession", store))

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("auth", authn != nil).Msg("router setup")

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.ListRooms()})
	})

	ctrl := signal.NewSignalWSController(o, cfg.Signal, originAllowed(cfg.Origins))
	ctrl.Identity = auth.SessionIdentity
	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	authGroup := r.Group("/auth")
	authGroup.GET("/user", auth.User)
	if authn != nil {
		authGroup.GET("/login", authn.Login)
		authGroup.GET("/callback", authn.Callback)
		authGroup.GET("/logout", authn.Logout)
	}

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	return r
}
