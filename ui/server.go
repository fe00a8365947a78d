// Package ui exposes the dataset-state engine as a JSON HTTP API.
package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"golang.org/x/sync/semaphore"

	"goeda/adapters/delimited"
	"goeda/adapters/excel"
	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/config"
	"goeda/internal/session"
	"goeda/internal/summary"
)

// Options configures a Server.
type Options struct {
	Data     config.DataConfig
	Limits   config.LimitsConfig
	Analysis config.AnalysisConfig
	Logger   logr.Logger
}

// Server is the HTTP surface over the session store.
type Server struct {
	router     *gin.Engine
	store      *session.Store
	summarizer *summary.Summarizer
	uploads    *semaphore.Weighted
	opts       Options
	logger     logr.Logger
}

// NewServer wires routes and middleware.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	workers := opts.Limits.MaxConcurrentUploads
	if workers <= 0 {
		workers = 1
	}

	s := &Server{
		router:     gin.New(),
		store:      session.NewStore(opts.Limits.MaxSessions, logger.WithName("Store")),
		summarizer: summary.NewSummarizer(),
		uploads:    semaphore.NewWeighted(int64(workers)),
		opts:       opts,
		logger:     logger.WithName("Server"),
	}
	if opts.Analysis.MinGroupSize > 0 {
		s.summarizer.MinGroupSize = opts.Analysis.MinGroupSize
	}
	if opts.Analysis.HighCardinality > 0 {
		s.summarizer.HighCardinality = opts.Analysis.HighCardinality
	}
	s.router.MaxMultipartMemory = int64(s.maxUploadBytes())
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router for use with net/http or httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[Server] listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) maxUploadBytes() int {
	mb := s.opts.Limits.MaxUploadMB
	if mb <= 0 {
		mb = 200
	}
	return mb << 20
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := s.router.Group("/api")
	api.POST("/preview", s.handlePreview)
	api.GET("/types", s.handleTypes)
	api.POST("/sessions", s.handleCreateSession)

	sess := api.Group("/sessions/:id")
	sess.GET("", s.handleSessionInfo)
	sess.DELETE("", s.handleDeleteSession)
	sess.GET("/table", s.handleTable)
	sess.GET("/columns", s.handleColumns)
	sess.GET("/select/:kind", s.handleSelect)
	sess.GET("/missing", s.handleMissing)

	sess.POST("/rename", s.handleRename)
	sess.DELETE("/columns/:name", s.handleDeleteColumn)
	sess.POST("/coerce", s.handleCoerce)
	sess.POST("/impute", s.handleImpute)
	sess.POST("/reset", s.handleReset)

	sess.GET("/export", s.handleExport)
	sess.GET("/summary", s.handleSummary)
	sess.POST("/summary", s.handleSummary)
	sess.GET("/summary.csv", s.handleSummaryCSV)
	sess.GET("/pairwise", s.handlePairwise)
	sess.GET("/report", s.handleReport)
}

// newState builds the state for one upload. Export uses the upload's own
// separator and decimal marker.
func (s *Server) newState(sep rune, p table.Parser) *session.State {
	return session.New(p,
		session.WithLogger(s.logger.WithName("Session")),
		session.WithEncoder(formatCSV, delimited.NewWriter(sep, p)),
		session.WithEncoder(formatXLSX, excel.NewWriter()),
	)
}

// withSession resolves :id and runs fn under the session lock. Errors from
// fn are written as JSON.
func (s *Server) withSession(c *gin.Context, fn func(st *session.State, info session.Info) error) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
		return
	}
	if err := s.store.With(id, fn); err != nil {
		s.respondError(c, err)
	}
}
