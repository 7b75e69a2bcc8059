// Package server 组装 HTTP 服务与每日定时运行。
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	v1 "leadreport/internal/api/v1"
	"leadreport/internal/config"
	"leadreport/internal/service/runner"
	"leadreport/internal/service/scheduler"
	memstore "leadreport/internal/service/store"
	"leadreport/internal/store"
)

// DBFileName 运行记录数据库文件名
const DBFileName = "leadreport.db"

// Server HTTP服务器
type Server struct {
	cfg       *config.AppConfig
	router    *gin.Engine
	store     *store.Store
	runner    *runner.Coordinator
	scheduler *scheduler.Scheduler
	v1        *v1.Handler
}

// NewServer 创建服务器；dataDir 需已存在
func NewServer(cfg *config.AppConfig, dataDir string) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	cache := memstore.NewMemoryStore(memstore.DefaultCapacity)
	coordinator := runner.NewCoordinator(cfg.AnalysisSettings(), runner.Options{
		ExportDir: filepath.Join(dataDir, "exports"),
		Store:     sqliteStore,
		Cache:     cache,
	})

	s := &Server{
		cfg:    cfg,
		router: gin.Default(),
		store:  sqliteStore,
		runner: coordinator,
		v1:     v1.NewHandler(cfg, sqliteStore, coordinator, cache, filepath.Join(dataDir, "uploads")),
	}

	if cfg.Schedule.Enabled {
		if cfg.Source.Path == "" {
			log.Printf("[server] WARNING: schedule.enabled ですが source.path が未設定のため定時実行しません")
		} else {
			s.scheduler = scheduler.New(cfg.Schedule.Hour, sqliteStore, s.runScheduled)
		}
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}
	// 兼容带版本前缀的访问
	s.v1.RegisterRoutes(s.router.Group("/api/v1"))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func (s *Server) runScheduled(ctx context.Context) error {
	_, err := s.runner.Run(ctx, runner.Request{
		Trigger:     store.TriggerSchedule,
		SourcePath:  s.cfg.Source.Path,
		SourceSheet: s.cfg.Source.Sheet,
		OutputPath:  s.cfg.Output.Path,
	}, nil)
	return err
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器与定时器，ctx 取消时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.router}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.scheduler != nil {
		g.Go(func() error {
			err := s.scheduler.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close 释放数据库连接
func (s *Server) Close() error {
	return s.store.Close()
}
