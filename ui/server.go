package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"launchdash/internal/api"
	"launchdash/internal/config"
	"launchdash/internal/query"
	"launchdash/internal/session"
	"launchdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static
var embeddedFiles embed.FS

// DashboardTitle is the page heading
const DashboardTitle = "SpaceX Launch Records Dashboard"

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	engine    *query.Engine
	sessions  *session.Manager
	hub       *api.SSEHub
	slider    config.SliderConfig
	templates *template.Template
}

// NewServer wires the router, templates and static assets
func NewServer(engine *query.Engine, sessions *session.Manager, hub *api.SSEHub, slider config.SliderConfig) (*Server, error) {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:   router,
		engine:   engine,
		sessions: sessions,
		hub:      hub,
		slider:   slider,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"kg": func(v float64) string { return fmt.Sprintf("%.0f kg", v) },
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v*100)
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = templates
	log.Printf("[TemplateInit] Parsed templates: %s", templates.DefinedTemplates())
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/dataset", s.handleDataset)

		// Stateless view computation
		apiGroup.GET("/views/pie", s.handlePieView)
		apiGroup.GET("/views/scatter", s.handleScatterView)

		// Session-backed controls: each PUT fires one state-change channel
		apiGroup.POST("/sessions", s.handleCreateSession)

		sessionGroup := apiGroup.Group("/sessions/:id", middleware.RequireSession(s.sessions))
		sessionGroup.GET("", s.handleGetSession)
		sessionGroup.PUT("/site", s.handleSetSite)
		sessionGroup.PUT("/payload", s.handleSetPayload)
		sessionGroup.GET("/events", s.handleSessionEvents)
	}
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting dashboard on http://%s", addr)
	return s.router.Run(addr)
}
