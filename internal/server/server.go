package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/hooks"
	obslogger "github.com/smallbiznis/addonhook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/addonhook/internal/observability/metrics"
	obstracing "github.com/smallbiznis/addonhook/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(run),
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Hooks   *hooks.Registry
	Metrics *obsmetrics.HTTPMetrics `optional:"true"`
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	hooks   *hooks.Registry
	metrics *obsmetrics.HTTPMetrics
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:     p.Cfg,
		log:     p.Log.Named("http.server"),
		hooks:   p.Hooks,
		metrics: p.Metrics,
	}
}

func NewEngine(s *Server) *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(s.log, obslogger.MiddlewareConfig{
		Debug: s.cfg.LogLevel == "debug",
	}))
	r.Use(obstracing.GinMiddleware())
	if s.metrics != nil {
		r.Use(s.metrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.RegisterHookRoutes(r)
	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
