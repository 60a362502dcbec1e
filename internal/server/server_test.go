package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/export"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestRouter(t *testing.T, names ...string) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "output", "products.json")
	if len(names) > 0 {
		results := make([]models.Result, 0, len(names))
		for _, name := range names {
			p := models.DefaultProduct()
			p.Name = &name
			results = append(results, models.Result{Source: name, Product: &p})
		}
		_, err := export.Write(path, results)
		require.NoError(t, err)
	}

	cfg := config.ServerConfig{
		Environment:    "test",
		AllowedOrigins: []string{"http://localhost:5173", "chrome-extension://*"},
		ExportPath:     path,
	}
	return SetupRouter(cfg, metrics.NewCollector("distill"), nil)
}

func serve(router *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"product-distiller"}`, w.Body.String())
}

func TestListProductsBeforeExport(t *testing.T) {
	router := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListProducts(t *testing.T) {
	router := setupTestRouter(t, "Drill", "Saw")

	w := serve(router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []export.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].ID)
	assert.Equal(t, "Saw", *got[1].Name)
}

func TestGetProduct(t *testing.T) {
	router := setupTestRouter(t, "Drill", "Saw")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"first", "/products/0", http.StatusOK, `{"id":0,"name":"Drill","brand":null,"price":null,"description":null,"key_features":[],"image_urls":[]}`},
		{"out of range", "/products/2", http.StatusNotFound, `{"error":"Product not found"}`},
		{"negative", "/products/-1", http.StatusNotFound, `{"error":"Product not found"}`},
		{"not a number", "/products/drill", http.StatusBadRequest, `{"error":"Invalid product id"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestMalformedExportIsServerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0644))
	router := SetupRouter(config.ServerConfig{ExportPath: path}, nil, nil)

	w := serve(router, http.MethodGet, "/products", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("allowed origin", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/products", http.Header{"Origin": {"http://localhost:5173"}})

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/products", http.Header{"Origin": {"http://evil.example"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := serve(router, http.MethodOptions, "/products", http.Header{"Origin": {"chrome-extension://abc"}})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "chrome-extension://abc", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"exact match", "http://localhost:5173", []string{"http://localhost:5173"}, true},
		{"wildcard match", "chrome-extension://abc", []string{"chrome-extension://*"}, true},
		{"no match", "http://evil.example", []string{"http://localhost:5173"}, false},
		{"empty origin", "", []string{"*"}, false},
		{"empty allowed list", "http://localhost:5173", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.allowed))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	serve(router, http.MethodGet, "/health", nil)
	w := serve(router, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `distill_http_requests_total{endpoint="/health",method="GET",status="200"} 1`)
}
