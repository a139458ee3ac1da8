// Package web serves the browser UI and JSON API for queries,
// comparisons and the multimodal agent.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/history"
	"github.com/user/llmbench/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to the query service, the agent and the
// history store. The agent and store are optional.
type Server struct {
	svc    *compare.Service
	agent  *agent.Agent
	store  history.Store
	limits agent.Limits
	title  string
	client *http.Client
	log    *logger.Logger
	engine *gin.Engine
}

type Option func(*Server)

// WithAgent enables the /ask, /analyze and /agent endpoints.
func WithAgent(a *agent.Agent, limits agent.Limits) Option {
	return func(s *Server) {
		s.agent = a
		s.limits = limits
	}
}

// WithHistory enables the /history endpoints.
func WithHistory(st history.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithHTTPClient sets the client used to fetch image URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.client = c }
}

// NewServer creates the server and its routes.
func NewServer(svc *compare.Service, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		svc:    svc,
		title:  "Multimodal QA Agent",
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.WithComponent("web"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.MaxMultipartMemory = 32 << 20
	s.engine.SetHTMLTemplate(indexTemplate)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(RequestLogging(s.log))
	s.engine.Use(Recovery(s.log))

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/ask", s.handleAsk)
		v1.POST("/analyze", s.handleAnalyze)
		v1.GET("/agent", s.handleAgentInfo)
		v1.POST("/query", s.handleQuery)
		v1.POST("/compare", s.handleCompare)
		v1.GET("/history", s.handleHistory)
		v1.GET("/history/:id", s.handleHistoryEntry)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("web server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Infow("shutting down web server")
	return srv.Shutdown(shutdownCtx)
}
