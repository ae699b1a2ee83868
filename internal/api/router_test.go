package api

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/job-application-tracker/internal/services"
	"github.com/welldanyogia/job-application-tracker/internal/storage"
	"github.com/welldanyogia/job-application-tracker/tests/mocks"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type routerFixture struct {
	echo      *echo.Echo
	repo      *mocks.MockApplicationRepository
	staticDir string
}

func newRouterFixture(t *testing.T, mutate func(*RouterConfig)) *routerFixture {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{})
	require.NoError(t, err)

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	staticDir := t.TempDir()
	repo := new(mocks.MockApplicationRepository)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &RouterConfig{
		DB: db,
		Service: services.NewApplicationService(services.ApplicationServiceConfig{
			Repo:    repo,
			Storage: store,
			Logger:  log,
		}),
		Logger:         log,
		UploadDir:      uploadDir,
		StaticDir:      staticDir,
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      100,
		RateBurst:      100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	return &routerFixture{echo: NewRouter(cfg), repo: repo, staticDir: staticDir}
}

func (f *routerFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_StatisticsRoutesAreNotTreatedAsIDs(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.repo.On("Count", mock.Anything).Return(int64(3), nil)
	f.repo.On("CountByStatus", mock.Anything).Return(map[string]int64{"Applied": 3}, nil)

	rec := f.get("/api/applications/statistics/total")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", string(bytes.TrimSpace(rec.Body.Bytes())))

	rec = f.get("/api/applications/statistics/byStatus")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Applied":3}`, rec.Body.String())

	f.repo.AssertExpectations(t)
}

func TestNewRouter_ServesPages(t *testing.T) {
	f := newRouterFixture(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(f.staticDir, "seeker.html"), []byte("<h1>apply</h1>"), 0644))

	rec := f.get("/api/applications/candidate")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "apply")

	rec = f.get("/api/applications/hr")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_AppliesSecurityHeaders(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.repo.On("List", mock.Anything).Return(nil, nil)

	rec := f.get("/api/applications")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestNewRouter_RateLimitsPerClient(t *testing.T) {
	f := newRouterFixture(t, func(cfg *RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
	})
	f.repo.On("Count", mock.Anything).Return(int64(0), nil)

	assert.Equal(t, http.StatusOK, f.get("/api/applications/statistics/total").Code)

	rec := f.get("/api/applications/statistics/total")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestNewRouter_RejectsOversizedUpload(t *testing.T) {
	f := newRouterFixture(t, func(cfg *RouterConfig) {
		cfg.MaxUploadBytes = 512
	})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("application", `{"name":"x"}`))
	part, err := w.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	f.repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestNewRouter_ReadyPingsDatabase(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestNewRouter_WebSocketRouteRequiresHub(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/ws")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
