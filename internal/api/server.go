package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vertice/internal/auth"
	"vertice/internal/catalog"
	"vertice/internal/library"
	"vertice/internal/session"
	"vertice/internal/storage"
	synchub "vertice/internal/sync"
	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

type Server struct {
	Config   *utils.Config
	Router   *gin.Engine
	DB       *sql.DB
	Catalog  *catalog.Store
	Hub      *synchub.Hub
	Sessions *session.Registry
	Log      *zap.Logger
}

// NewServer assembles the HTTP API. Session state of every client token is
// kept in db under the token's client id.
func NewServer(conf *utils.Config, db *sql.DB, cat *catalog.Store, hub *synchub.Hub, log *zap.Logger) *Server {
	log = logger.OrNop(log)
	if conf.API.GinMode != "" {
		gin.SetMode(conf.API.GinMode)
	}

	s := &Server{
		Config:  conf,
		Router:  gin.New(),
		DB:      db,
		Catalog: cat,
		Hub:     hub,
		Log:     log,
	}
	s.Sessions = session.NewRegistry(
		func(ns string) session.Repository {
			return session.NewStorageRepo(storage.NewSQLite(db, ns))
		},
		cat,
		session.WithNotifier(hub),
		session.WithLogger(log.Named("session")),
	)

	s.MountMiddlewares()
	s.MountHandlers()
	return s
}

// TokenService signs and checks client tokens with the auth section of cfg.
func TokenService(cfg *utils.Config) auth.TokenService {
	return auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(requestid.New())
	s.Router.Use(requestLogger(s.Log.Named("http")))
	s.Router.Use(gin.Recovery())
	s.Router.Use(cors.New(corsConfig(s.Config.API.AllowedOrigins)))
}

func (s *Server) MountHandlers() {
	r := s.Router
	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/debug", s.debug)

	catalog.NewHandler(s.Catalog).RegisterRoutes(r.Group(""))

	sessionHandler := session.NewHandler(s.Sessions, s.Catalog, s.Log.Named("session"), s.Config.API.LoginRate, s.Config.API.LoginBurst)

	tokens := TokenService(s.Config)
	authRepo := auth.NewRepo(s.DB)
	authHandler := auth.NewHandler(authRepo, tokens, s.Log.Named("auth"))
	authHandler.OnRevoke = sessionHandler.Forget
	authHandler.RegisterRoutes(r.Group(""))

	protected := r.Group("/session")
	protected.Use(auth.ClientMiddleware(tokens, authRepo))

	sessionHandler.RegisterRoutes(protected)
	library.NewHandler(library.New(s.Catalog), s.Sessions).RegisterRoutes(protected)
	protected.GET("/ws", s.Hub.WSHandler())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	stats := s.Hub.Stats()
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "not_ready",
			"db_error":    err.Error(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"db":          "ok",
		"tcp_clients": stats.TCPClients,
		"ws_clients":  stats.WSClients,
	})
}

func (s *Server) debug(c *gin.Context) {
	stats := s.Hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"db":          s.Config.Database.Path,
		"data":        s.Config.Data.Location,
		"sessions":    s.Sessions.Len(),
		"tcp_clients": stats.TCPClients,
		"ws_clients":  stats.WSClients,
	})
}

// corsConfig allows any origin, without credentials, when none is configured.
func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		conf.AllowOrigins = nil
		conf.AllowAllOrigins = true
		conf.AllowCredentials = false
	}
	return conf
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
