package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCORS_Wildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ExplicitOriginsAndPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.POST("/create-provider", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/create-provider", nil)
	req.Header.Set("Origin", "https://app.example")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "https://app.example", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")

	req = httptest.NewRequest(http.MethodOptions, "/create-provider", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	for _, expose := range []bool{false, true} {
		r := gin.New()
		r.Use(RequestLogger(zap.New(core), expose))
		r.GET("/boom", func(*gin.Context) { panic("kaboom") })

		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Contains(t, resp.Body.String(), `"message":"Server error"`)
		assert.Equal(t, expose, strings.Contains(resp.Body.String(), `"stack":`))
		assert.NotEmpty(t, resp.Header().Get(requestIDHeader))
	}
	assert.Equal(t, 2, logs.FilterMessage("panic recovered").Len())
}

func TestRequestLogger_LogsLevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core), false))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "rid-1", resp.Header().Get(requestIDHeader))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	assert.Equal(t, 1, logs.FilterMessage("request").Len())
	assert.Equal(t, 1, logs.FilterMessage("request rejected").Len())
}
