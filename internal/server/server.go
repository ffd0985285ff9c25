package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/parkingcontrol/internal/clock"
	"github.com/smallbiznis/parkingcontrol/internal/config"
	"github.com/smallbiznis/parkingcontrol/internal/observability"
	obsmiddleware "github.com/smallbiznis/parkingcontrol/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/parkingcontrol/internal/observability/metrics"
	obstracing "github.com/smallbiznis/parkingcontrol/internal/observability/tracing"
	parkingspotdomain "github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
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

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	paging         *config.PagingConfigHolder
	parkingSpotSvc parkingspotdomain.Service
	clock          clock.Clock
	obsMetrics     *obsmetrics.Metrics
	log            *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Paging         *config.PagingConfigHolder
	ParkingSpotSvc parkingspotdomain.Service
	Clock          clock.Clock
	Log            *zap.Logger
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		paging:         p.Paging,
		parkingSpotSvc: p.ParkingSpotSvc,
		clock:          p.Clock,
		obsMetrics:     p.ObsMetrics,
		log:            log.Named("http.server"),
	}
	if svc.clock == nil {
		svc.clock = clock.New()
	}

	svc.RegisterRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	spots := s.engine.Group("/parking-spot")
	{
		spots.POST("", s.CreateParkingSpot)
		spots.GET("", s.ListParkingSpots)
		spots.GET("/:id", s.GetParkingSpot)
		spots.PUT("/:id", s.UpdateParkingSpot)
		spots.DELETE("/:id", s.DeleteParkingSpot)
	}
}

func (s *Server) pagingConfig() config.PagingConfig {
	if s.paging == nil {
		return config.DefaultPagingConfig()
	}
	return s.paging.Get()
}
