// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"support-chatbot/internal/common/config"
	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
)

type Dependencies struct {
	Chat    ChatService
	History HistoryReader
	Catalog CatalogReader
	Admin   AdminService
	// Checks are pinged by /ready, keyed by dependency name.
	Checks map[string]Pinger
}

// Server wraps the gin engine with graceful shutdown.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	logger logger.Logger
}

func New(cfg *config.Config, deps Dependencies, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log = log.WithFields(map[string]interface{}{"component": "http"})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(cfg.App.Name))
	engine.Use(RequestLogger(log))
	engine.Use(CORS(cfg.Server.AllowedOrigins))

	errs := apperrors.NewErrorHandler(log)
	h := &handlers{
		chat:    deps.Chat,
		history: deps.History,
		catalog: deps.Catalog,
		admin:   deps.Admin,
		checks:  deps.Checks,
		errs:    errs,
	}
	registerRoutes(engine, h, AdminToken(cfg.Admin.Token, errs))

	return &Server{cfg: cfg, engine: engine, logger: log}
}

func registerRoutes(engine *gin.Engine, h *handlers, adminGate gin.HandlerFunc) {
	engine.GET("/health", h.health)
	engine.GET("/ready", h.ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/chat", h.postChat)
	engine.GET("/history/:user_id", h.getHistory)

	engine.GET("/order/:order_id", h.getOrder)
	engine.GET("/users/:user_id/orders", h.getUserOrders)
	engine.GET("/products", h.listProducts)
	engine.GET("/products/:id", h.getProduct)
	engine.GET("/warranties", h.listWarranties)

	db := engine.Group("/database", adminGate)
	db.DELETE("/clear", h.clearDatabase)
	db.POST("/seed", h.seedDatabase)
	db.POST("/reset", h.resetDatabase)
	db.GET("/status", h.databaseStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", nil)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.cfg.Server.ShutdownTimeout))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
