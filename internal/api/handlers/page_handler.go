package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Static pages served from the configured directory
const (
	CandidatePage = "seeker.html"
	RecruiterPage = "recruiter.html"
)

// PageHandler serves the candidate and recruiter HTML pages
type PageHandler struct {
	staticDir string
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(staticDir string) *PageHandler {
	return &PageHandler{staticDir: staticDir}
}

// Candidate handles GET /api/applications/candidate
func (h *PageHandler) Candidate(c echo.Context) error {
	return h.serve(c, CandidatePage)
}

// Recruiter handles GET /api/applications/hr
func (h *PageHandler) Recruiter(c echo.Context) error {
	return h.serve(c, RecruiterPage)
}

func (h *PageHandler) serve(c echo.Context, name string) error {
	path := filepath.Join(h.staticDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	return c.File(path)
}
