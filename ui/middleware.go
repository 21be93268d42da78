package ui

import (
	"io/fs"
	"log"
	"net/http"
)

// setupMiddleware serves the embedded static assets under /static
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		// embed guarantees the directory; this only fires if the directive changes
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	log.Printf("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}
