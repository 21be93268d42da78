package ui

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"launchdash/domain/launch"
	"launchdash/internal/errors"
	"launchdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// SiteOption is one dropdown entry
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SliderInfo describes the payload range control
type SliderInfo struct {
	Min     float64            `json:"min"`
	Max     float64            `json:"max"`
	Step    float64            `json:"step"`
	Marks   []float64          `json:"marks"`
	Initial launch.PayloadRange `json:"initial"`
}

// DatasetInfo is everything the page needs to build its controls
type DatasetInfo struct {
	Source      string         `json:"source"`
	Sites       []string       `json:"sites"`
	Options     []SiteOption   `json:"options"`
	MinPayload  float64        `json:"min_payload_kg"`
	MaxPayload  float64        `json:"max_payload_kg"`
	Slider      SliderInfo     `json:"slider"`
	Summary     launch.Summary `json:"summary"`
	DefaultSite string         `json:"default_site"`
}

type siteRequest struct {
	Site string `json:"site" binding:"required"`
}

type payloadRequest struct {
	Low  *float64 `json:"low" binding:"required"`
	High *float64 `json:"high" binding:"required"`
}

func (s *Server) datasetInfo() DatasetInfo {
	ds := s.engine.Dataset()
	sites := ds.Sites()

	// Every distinct site gets an option, however many the dataset holds
	options := make([]SiteOption, 0, len(sites)+1)
	options = append(options, SiteOption{Label: launch.AllSitesLabel, Value: launch.AllSites})
	for _, site := range sites {
		options = append(options, SiteOption{Label: site, Value: site})
	}

	return DatasetInfo{
		Source:     ds.Source(),
		Sites:      sites,
		Options:    options,
		MinPayload: ds.MinPayload(),
		MaxPayload: ds.MaxPayload(),
		Slider: SliderInfo{
			Min:     s.slider.Min,
			Max:     s.slider.Max,
			Step:    s.slider.Step,
			Marks:   s.slider.Marks(),
			Initial: ds.PayloadBounds(),
		},
		Summary:     ds.Summary(),
		DefaultSite: launch.AllSites,
	}
}

// handleIndex renders the dashboard page
func (s *Server) handleIndex(c *gin.Context) {
	info := s.datasetInfo()
	bootstrap, err := json.Marshal(info)
	if err != nil {
		log.Printf("[Index] Failed to marshal dataset info: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	s.renderTemplate(c, "dashboard.html", map[string]interface{}{
		"Title":     DashboardTitle,
		"Info":      info,
		"Bootstrap": template.JS(bootstrap),
	})
}

// handleDataset returns the control configuration and load-time summary
func (s *Server) handleDataset(c *gin.Context) {
	c.JSON(http.StatusOK, s.datasetInfo())
}

// handlePieView computes the success pie for ?site= (default ALL)
func (s *Server) handlePieView(c *gin.Context) {
	site := c.DefaultQuery("site", launch.AllSites)
	c.JSON(http.StatusOK, s.engine.Pie(site))
}

// handleScatterView computes the payload scatter for ?site=&low=&high=.
// Missing bounds default to the dataset's payload range.
func (s *Server) handleScatterView(c *gin.Context) {
	bounds := s.engine.Dataset().PayloadBounds()
	low, err := floatQuery(c, "low", bounds.Low)
	if err != nil {
		respondError(c, err)
		return
	}
	high, err := floatQuery(c, "high", bounds.High)
	if err != nil {
		respondError(c, err)
		return
	}

	sel := launch.SelectionState{
		SelectedSite: c.DefaultQuery("site", launch.AllSites),
		PayloadRange: launch.PayloadRange{Low: low, High: high},
	}
	c.JSON(http.StatusOK, s.engine.Scatter(sel))
}

// handleCreateSession starts a session at the default selection
func (s *Server) handleCreateSession(c *gin.Context) {
	snap, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// handleGetSession returns the session's current state and views
func (s *Server) handleGetSession(c *gin.Context) {
	id := middleware.SessionID(c)
	snap, err := s.sessions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleSetSite fires the site channel
func (s *Server) handleSetSite(c *gin.Context) {
	id := middleware.SessionID(c)
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("body must be {\"site\": \"...\"}: "+err.Error()))
		return
	}

	snap, err := s.sessions.SetSite(c.Request.Context(), id, req.Site)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleSetPayload fires the payload channel
func (s *Server) handleSetPayload(c *gin.Context) {
	id := middleware.SessionID(c)
	var req payloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("body must be {\"low\": n, \"high\": n}: "+err.Error()))
		return
	}

	snap, err := s.sessions.SetPayloadRange(c.Request.Context(), id, launch.PayloadRange{Low: *req.Low, High: *req.High})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleSessionEvents streams view pushes for an existing session
func (s *Server) handleSessionEvents(c *gin.Context) {
	id := middleware.SessionID(c)
	log.Printf("[Events] Session %s subscribed to view pushes", id)
	s.hub.HandleSSE(c)
}

func floatQuery(c *gin.Context, key string, fallback float64) (float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput("query parameter " + key + " must be a number")
	}
	return v, nil
}

// respondError maps AppError codes to HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
