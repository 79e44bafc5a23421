package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/orgboard/orgboard/internal/audit/domain"
	"github.com/orgboard/orgboard/internal/config"
	"github.com/orgboard/orgboard/internal/identity"
	"github.com/orgboard/orgboard/internal/observability"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.Tracing())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	verifier        *identity.Verifier
	organizationSvc orgdomain.Service
	auditSvc        auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	Verifier        *identity.Verifier
	OrganizationSvc orgdomain.Service
	AuditSvc        auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	srv := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log,
		verifier:        p.Verifier,
		organizationSvc: p.OrganizationSvc,
		auditSvc:        p.AuditSvc,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	auth := s.AuthRequired()

	orgs := api.Group("/organizations")
	{
		orgs.GET("", s.listOrganizations)
		orgs.GET("/search", s.searchOrganizations)
		orgs.GET("/mine", auth, s.listMyOrganizations)
		orgs.GET("/:id", s.getOrganization)
		orgs.POST("", auth, s.createOrganization)
		orgs.PUT("/:id", auth, s.updateOrganization)
		orgs.DELETE("/:id", auth, s.deleteOrganization)

		orgs.GET("/:id/members", auth, s.listMembers)
		orgs.POST("/:id/members", auth, s.addMember)
		orgs.PUT("/:id/members/:memberId", auth, s.changeMemberRole)
		orgs.DELETE("/:id/members/:memberId", auth, s.removeMember)

		orgs.GET("/:id/audit", auth, s.listAuditLogs)
	}

	s.registerStaticRoutes()
}

// registerStaticRoutes serves the bundled single-page client when a public/
// directory is present. Unknown /api paths stay JSON 404s; everything else
// falls back to the SPA index.
func (s *Server) registerStaticRoutes() {
	publicDir := "public"
	indexFile := filepath.Join(publicDir, "index.html")
	if _, err := os.Stat(indexFile); err != nil {
		s.engine.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, problemPayload{
				Title:  "Not found",
				Status: http.StatusNotFound,
			})
		})
		return
	}

	s.engine.Static("/assets", filepath.Join(publicDir, "assets"))
	s.engine.StaticFile("/", indexFile)
	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, problemPayload{
				Title:  "Not found",
				Status: http.StatusNotFound,
			})
			return
		}
		c.File(indexFile)
	})
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
