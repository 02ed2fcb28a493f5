package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applogger "NewsImpact/pkg/logger"

	"github.com/labstack/echo/v4"
)

type testHandler struct{}

type pingRequest struct {
	Name  string `query:"name" validate:"required,max=5"`
	Times int    `query:"times" default:"1"`
}

func (testHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/panic", func(c echo.Context) error { panic("boom") })
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundErrorf("thing %d not found", 7))
	})
	e.GET("/ping", func(c echo.Context) error {
		req := &pingRequest{}
		if verr := ReadAndValidateRequest(c, req); verr != nil {
			return BadRequestResponse(c, verr)
		}
		return SuccessResponse(c, req)
	})
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer(testHandler{}, applogger.Nop())

	if rec := serve(s, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := serve(s, http.MethodGet, "/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics endpoint not serving request metrics")
	}

	rec := serve(s, http.MethodGet, "/panic")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic: expected 500, got %d", rec.Code)
	}

	rec = serve(s, http.MethodGet, "/missing")
	var resp struct {
		Status int         `json:"status"`
		Data   []*AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if rec.Code != http.StatusNotFound || resp.Status != http.StatusNotFound || resp.Data[0].Code != "ERR_NOT_FOUND" {
		t.Fatalf("unexpected not found response %d %s", rec.Code, rec.Body.String())
	}
}

func TestReadAndValidateRequest(t *testing.T) {
	s := NewServer(testHandler{}, applogger.Nop())

	rec := serve(s, http.MethodGet, "/ping?name=toolongname")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "name must be at most 5 characters") {
		t.Fatalf("expected max violation, got %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(s, http.MethodGet, "/ping?name=bob")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Times":1`) {
		t.Fatalf("expected defaults applied, got %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(testHandler{}, applogger.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
