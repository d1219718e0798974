package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	"github.com/smallbiznis/beacon/internal/config"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	orgSvc      orgdomain.Service
	channelSvc  channeldomain.Service
	eventSvc    eventdomain.Service
	messageSvc  messagedomain.Service
	occurrences occurrencedomain.Repository
	processor   occurrencedomain.Processor
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	OrgSvc      orgdomain.Service
	ChannelSvc  channeldomain.Service
	EventSvc    eventdomain.Service
	MessageSvc  messagedomain.Service
	Occurrences occurrencedomain.Repository
	Processor   occurrencedomain.Processor
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http"),
		orgSvc:      p.OrgSvc,
		channelSvc:  p.ChannelSvc,
		eventSvc:    p.EventSvc,
		messageSvc:  p.MessageSvc,
		occurrences: p.Occurrences,
		processor:   p.Processor,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api")

	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations", s.ListOrganizations)
	api.GET("/organizations/:slug", s.GetOrganization)
	api.GET("/organizations/:slug/projects", s.ListProjects)

	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id/applications", s.ListApplications)
	api.POST("/applications", s.CreateApplication)

	api.POST("/channels", s.CreateChannel)
	api.GET("/channels/:id", s.GetChannel)
	api.POST("/channels/:id/lock", s.LockChannel)
	api.POST("/channels/:id/unlock", s.UnlockChannel)

	api.POST("/events", s.CreateEvent)
	api.GET("/events/:id", s.GetEvent)
	api.POST("/events/:id/channels", s.AttachEventChannel)
	api.POST("/events/:id/trigger", s.TriggerEvent)

	api.POST("/messages", s.CreateMessage)
	api.POST("/messages/:id/render", s.RenderMessage)

	api.GET("/occurrences", s.LookupOccurrence)
	api.GET("/occurrences/:id", s.GetOccurrence)
	api.GET("/occurrences/:id/deliveries", s.ListOccurrenceDeliveries)
	api.POST("/occurrences/:id/process", s.ProcessOccurrence)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server stopped", zap.Error(err))
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
