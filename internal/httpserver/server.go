package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/recall/internal/model"
	"github.com/tinytelemetry/recall/internal/review"
	"github.com/tinytelemetry/recall/internal/srs"
)

// Server provides the HTTP API for studying cards.
type Server struct {
	addr      string
	svc       *review.Service
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, svc *review.Service) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		svc:    svc,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/stats", s.handleStats)

	api := r.Group("/api/flashcards")
	api.GET("", s.handleList)
	api.POST("", s.handleCreate)
	api.GET("/due", s.handleDue)
	api.POST("/review", s.handleReview)
	api.POST("/upload", s.handleUpload)
	api.GET("/:id", s.handleGet)
	api.DELETE("/:id", s.handleDelete)
	api.GET("/:id/preview", s.handlePreview)
	api.GET("/:id/reviews", s.handleHistory)

	return r
}

// ErrNotListening is returned by Serve when Listen has not bound an address.
var ErrNotListening = errors.New("httpserver: Serve called before Listen")

// Listen binds the configured address. Requests are not handled until Serve.
func (s *Server) Listen() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.listener = listener
	s.addr = listener.Addr().String()
	return nil
}

// Serve handles requests on the bound listener until Stop. It always returns
// a non-nil error; after Stop that error is http.ErrServerClosed.
func (s *Server) Serve() error {
	if s.listener == nil {
		return ErrNotListening
	}
	s.startTime = time.Now()
	return s.server.Serve(s.listener)
}

// Addr returns the listen address, resolved once Listen has bound it.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// statusFor maps workflow errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, model.ErrInvalidCardID),
		errors.Is(err, model.ErrEmptyContent),
		errors.Is(err, review.ErrEmptyImport),
		errors.Is(err, review.ErrImportTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, srs.ErrInvariantViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func cardID(c *gin.Context) (model.CardID, bool) {
	id, err := model.ParseCardID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return id, true
}

// queryLimit reads ?limit=N. Missing, malformed and non-positive values all
// yield 0, which the service replaces with its default.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.svc.CardCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"card_count": count,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleList(c *gin.Context) {
	cards, err := s.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "count": len(cards)})
}

func (s *Server) handleDue(c *gin.Context) {
	cards, err := s.svc.Due(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "count": len(cards)})
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	card, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) handleCreate(c *gin.Context) {
	var draft model.CardDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	card, err := s.svc.Create(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	if err := s.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReview(c *gin.Context) {
	var req struct {
		ID      string `json:"id" binding:"required"`
		Quality *int   `json:"quality" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing id/quality field"})
		return
	}
	id, err := model.ParseCardID(req.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	card, err := s.svc.Submit(c.Request.Context(), id, *req.Quality)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) handleUpload(c *gin.Context) {
	var req struct {
		Cards []model.CardDraft `json:"cards"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	cards, err := s.svc.Import(c.Request.Context(), req.Cards)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cards": cards, "count": len(cards)})
}

func (s *Server) handlePreview(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	preview, err := s.svc.Preview(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make(map[string]srs.State, len(preview))
	for q, st := range preview {
		out[strconv.Itoa(int(q))] = st
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "outcomes": out})
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	history, err := s.svc.History(c.Request.Context(), id, queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": history, "count": len(history)})
}
