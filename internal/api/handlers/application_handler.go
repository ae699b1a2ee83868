package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/job-application-tracker/internal/api/response"
	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
	"github.com/welldanyogia/job-application-tracker/internal/logger"
	"github.com/welldanyogia/job-application-tracker/internal/services"
)

// Multipart part names used by the candidate form
const (
	applicationPart = "application"
	resumePart      = "resume"
)

// ApplicationHandler handles job application HTTP requests
type ApplicationHandler struct {
	service services.ApplicationService
	logger  *slog.Logger
	secLog  *logger.SecurityLogger
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(service services.ApplicationService, log *slog.Logger, secLog *logger.SecurityLogger) *ApplicationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ApplicationHandler{
		service: service,
		logger:  log,
		secLog:  secLog,
	}
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/applications
func (h *ApplicationHandler) Create(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		if he := bodyLimitError(err); he != nil {
			return he
		}
		return response.BadRequest(c)
	}
	defer form.RemoveAll()

	input, err := readApplicationPart(form)
	if err != nil {
		h.logger.Debug("unreadable application part", slog.Any("error", err))
		return response.BadRequest(c)
	}

	resume, closeResume, err := openResumePart(form)
	if err != nil {
		return h.fail(c, "failed to open uploaded resume", err)
	}
	defer closeResume()

	application, err := h.service.Create(c.Request().Context(), input, resume)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return response.ValidationFailed(c, verr.Response())
		case errors.Is(err, services.ErrResumeRequired):
			if h.secLog != nil {
				h.secLog.RejectedUpload(c.RealIP(), resumeName(resume), "empty_or_missing")
			}
			return response.BadRequest(c)
		case apperrors.IsDuplicateEntry(err):
			return response.Empty(c, http.StatusConflict)
		}
		if he := bodyLimitError(err); he != nil {
			return he
		}
		return h.fail(c, "failed to create application", err)
	}

	return response.Created(c, application)
}

// List handles GET /api/applications, or GET /api/applications?email=
func (h *ApplicationHandler) List(c echo.Context) error {
	if c.QueryParams().Has("email") {
		return h.FindByEmail(c)
	}

	applications, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "failed to list applications", err)
	}
	return response.OK(c, applications)
}

// FindByEmail answers with a zero- or one-element list, never 404
func (h *ApplicationHandler) FindByEmail(c echo.Context) error {
	applications, err := h.service.FindByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return h.fail(c, "failed to find application by email", err)
	}
	return response.OK(c, applications)
}

// Get handles GET /api/applications/:id
func (h *ApplicationHandler) Get(c echo.Context) error {
	id, stored, err := parseID(c)
	if err != nil {
		return response.BadRequest(c)
	}
	if !stored {
		return response.NotFound(c)
	}

	application, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c)
		}
		return h.fail(c, "failed to get application", err)
	}
	return response.OK(c, application)
}

// UpdateStatus handles PATCH /api/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	id, stored, err := parseID(c)
	if err != nil {
		return response.BadRequest(c)
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return response.BadRequest(c)
	}
	if !stored {
		return response.NotFound(c)
	}

	application, err := h.service.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch {
		case apperrors.IsNotFound(err):
			return response.NotFound(c)
		case apperrors.IsInvalidInput(err):
			return response.BadRequest(c)
		}
		return h.fail(c, "failed to update application status", err)
	}
	return response.OK(c, application)
}

// Delete handles DELETE /api/applications/:id. Absent ids also get 204.
func (h *ApplicationHandler) Delete(c echo.Context) error {
	id, stored, err := parseID(c)
	if err != nil {
		return response.BadRequest(c)
	}
	if !stored {
		return response.NoContent(c)
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "failed to delete application", err)
	}
	return response.NoContent(c)
}

// DownloadResume handles GET /api/applications/resume/:id
func (h *ApplicationHandler) DownloadResume(c echo.Context) error {
	id, stored, err := parseID(c)
	if err != nil {
		return response.BadRequest(c)
	}
	if !stored {
		return response.NotFound(c)
	}

	download, err := h.service.OpenResume(c.Request().Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c)
		}
		return h.fail(c, "failed to open resume", err)
	}
	defer download.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, contentDisposition(download.Filename))
	return c.Stream(http.StatusOK, download.ContentType, download.Content)
}

// Total handles GET /api/applications/statistics/total
func (h *ApplicationHandler) Total(c echo.Context) error {
	total, err := h.service.Total(c.Request().Context())
	if err != nil {
		return h.fail(c, "failed to count applications", err)
	}
	return response.OK(c, total)
}

// CountByStatus handles GET /api/applications/statistics/byStatus
func (h *ApplicationHandler) CountByStatus(c echo.Context) error {
	counts, err := h.service.CountByStatus(c.Request().Context())
	if err != nil {
		return h.fail(c, "failed to count applications by status", err)
	}
	return response.OK(c, counts)
}

// fail logs an unexpected error and answers with its mapped status
func (h *ApplicationHandler) fail(c echo.Context, msg string, err error) error {
	h.logger.Error(msg,
		slog.String("path", c.Request().URL.Path),
		slog.String("code", apperrors.GetErrorCode(err)),
		slog.Any("error", err))
	return response.Error(c, err)
}

// parseID reads the :id path value. Only non-numeric input is an error.
// stored is false for numbers that no application can have, including
// negative and overflowing ones.
func parseID(c echo.Context) (id uint, stored bool, err error) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n < services.MinApplicationID || n > services.MaxApplicationID {
		return 0, false, nil
	}
	return uint(n), true, nil
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// contentDisposition renders an inline disposition with the name as an
// escaped quoted-string
func contentDisposition(filename string) string {
	return `inline; filename="` + dispositionEscaper.Replace(filename) + `"`
}

// readApplicationPart decodes the application JSON. Browsers send it either
// as a plain form field or as a Blob, which arrives as a file part.
func readApplicationPart(form *multipart.Form) (services.CreateApplicationInput, error) {
	var input services.CreateApplicationInput

	var raw io.Reader
	if values := form.Value[applicationPart]; len(values) > 0 {
		raw = strings.NewReader(values[0])
	} else if files := form.File[applicationPart]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return input, err
		}
		defer f.Close()
		raw = f
	} else {
		return input, fmt.Errorf("missing %q part", applicationPart)
	}

	if err := json.NewDecoder(raw).Decode(&input); err != nil {
		return input, err
	}
	return input, nil
}

// openResumePart returns nil when no resume part was sent
func openResumePart(form *multipart.Form) (*services.ResumeUpload, func(), error) {
	files := form.File[resumePart]
	if len(files) == 0 {
		return nil, func() {}, nil
	}

	header := files[0]
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}

	return &services.ResumeUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  f,
	}, func() { f.Close() }, nil
}

func resumeName(resume *services.ResumeUpload) string {
	if resume == nil {
		return ""
	}
	return resume.Filename
}

// bodyLimitError extracts the 413 raised when the upload exceeds the body limit
func bodyLimitError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return he
	}
	return nil
}
