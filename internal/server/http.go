package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"carlo/internal/scenario"
	"carlo/internal/simulation"
	"carlo/internal/visual"

	"github.com/gin-gonic/gin"
)

// Server 提供 Gin 接口：查询/覆盖场景、提交估值、取回结果与路径图。
type Server struct {
	addr   string
	svc    *simulation.Service
	reg    *scenario.Registry
	router *gin.Engine
}

type Config struct {
	Addr     string
	Svc      *simulation.Service
	Registry *scenario.Registry
}

func New(cfg Config) (*Server, error) {
	if cfg.Svc == nil {
		return nil, errors.New("simulation service 不能为空")
	}
	if cfg.Registry == nil {
		return nil, errors.New("scenario registry 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:   cfg.Addr,
		svc:    cfg.Svc,
		reg:    cfg.Registry,
		router: router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/scenario", s.handleScenario)
	api.PUT("/scenario", s.handleScenarioOverride)

	pricing := api.Group("/pricing")
	pricing.POST("/price", s.handleAnalytic)
	pricing.POST("/runs", s.handleRunSubmit)
	pricing.GET("/runs", s.handleRunList)
	pricing.GET("/runs/:id", s.handleRunDetail)
	pricing.GET("/runs/:id/paths", s.handleRunPaths)
	pricing.GET("/runs/:id/chart", s.handleRunChart)
}

func (s *Server) handleScenario(c *gin.Context) {
	snap, err := s.reg.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleScenarioOverride(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, err := s.reg.Override(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, next)
}

func (s *Server) handleAnalytic(c *gin.Context) {
	var req simulation.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, snap, err := s.svc.Analytic(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "scenario": snap})
}

func (s *Server) handleRunSubmit(c *gin.Context) {
	var req simulation.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.svc.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

func (s *Server) handleRunList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.svc.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleRunDetail(c *gin.Context) {
	run, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleRunPaths(c *gin.Context) {
	paths, err := s.svc.Samples(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

func (s *Server) handleRunChart(c *gin.Context) {
	id := c.Param("id")
	run, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	paths, err := s.svc.Samples(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	html, err := visual.RenderPaths(visual.PathChartInput{
		Title: fmt.Sprintf("%s K=%v T=%v", run.OptionType, run.Strike, run.Maturity),
		Subtitle: fmt.Sprintf("estimate=%.6f stderr=%.6f analytic=%.6f paths=%d",
			run.Estimate, run.StdError, run.AnalyticPrice, run.Paths),
		Paths: paths,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "png" {
		png, err := visual.SnapshotPNG(c.Request.Context(), html)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Router 暴露给测试。
func (s *Server) Router() http.Handler {
	return s.router
}
