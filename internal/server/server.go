// Package server is the upload front end: a small gin application where a
// browser submits a spreadsheet or member CSV and gets the processed artifact
// back as a download.
package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/config"
	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/pkg/pipeline/worker"
)

// Server wires the two processing paths behind HTTP upload handlers.
type Server struct {
	cfg     config.Server
	sites   extract.SiteExtractor
	records extract.RecordExtractor
	opts    worker.Options
	log     *zap.Logger
}

// New builds a Server. Both extractors usually share one backend client.
func New(cfg config.Server, sites extract.SiteExtractor, records extract.RecordExtractor, opts worker.Options, log *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		sites:   sites,
		records: records,
		opts:    opts,
		log:     log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(s.requestLogger())
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	maxBody := s.cfg.MaxUploadMB << 20
	router.MaxMultipartMemory = maxBody

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)
	router.POST("/process/search", s.limitBody(maxBody), s.handleSearch)
	router.POST("/process/verify", s.limitBody(maxBody), s.handleVerify)
	return router
}

// Run starts the HTTP server and blocks until it fails.
func (s *Server) Run() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))
	return s.Router().Run(s.cfg.Addr)
}

func (s *Server) limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.log.Info("http request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
