package api

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docfix/internal/config"
	"docfix/internal/queue"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type DocumentTracker interface {
	AddDocument(ctx context.Context, path string) error
	RemoveDocument(ctx context.Context, path string) error
	GetDocuments(ctx context.Context) ([]string, error)
	DocumentExists(ctx context.Context, path string) (bool, error)
}

type Server struct {
	echo          *echo.Echo
	repo          storage.RunRepository
	documents     DocumentTracker
	publisher     queue.Publisher
	rewriter      *rewriter.Rewriter
	substitutions []config.Substitution
	templates     *template.Template
	sse           *SSEBroker
}

type SSEBroker struct {
	clients map[chan string]bool
	mu      sync.RWMutex
}

func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan string]bool)}
}

func (b *SSEBroker) Subscribe() chan string {
	ch := make(chan string, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *SSEBroker) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	close(ch)
	b.mu.Unlock()
}

// Broadcast drops the message for clients whose buffer is full.
func (b *SSEBroker) Broadcast(msg string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// NewServer wires the HTTP API. documents and publisher may be nil, in
// which case the routes that need them answer 503.
func NewServer(repo storage.RunRepository, documents DocumentTracker, publisher queue.Publisher, rw *rewriter.Rewriter, rcfg config.RewriterConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"timeAgo": timeAgo,
	}).ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		echo:          e,
		repo:          repo,
		documents:     documents,
		publisher:     publisher,
		rewriter:      rw,
		substitutions: rcfg.Substitutions,
		templates:     tmpl,
		sse:           NewSSEBroker(),
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/api/stats", s.stats)
	s.echo.GET("/api/events", s.events)

	s.echo.POST("/api/classify", s.classify)
	s.echo.POST("/api/rewrite", s.rewrite, middleware.BodyLimit("10M"))

	s.echo.GET("/api/runs", s.getRuns)
	s.echo.GET("/api/runs/:id", s.getRun)
	s.echo.POST("/api/jobs", s.createJob)

	// Tracked documents
	s.echo.GET("/api/documents", s.getDocuments)
	s.echo.POST("/api/documents", s.addDocument)
	s.echo.DELETE("/api/documents", s.removeDocument)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) Broadcast(msg string) {
	s.sse.Broadcast(msg)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(c echo.Context, name string, data any) error {
	c.Response().Header().Set("Content-Type", "text/html")
	err := s.templates.ExecuteTemplate(c.Response(), name, data)
	if err != nil {
		c.Logger().Error(err)
	}
	return err
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
