package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medipos/apotek-backend/pkg/database"
)

func newSearchRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newCatalogDB(t)
	h := NewHandler(db, NoopSearchCache{})

	r := gin.New()
	r.GET("/api/v1/medicines", h.Search)
	return r
}

func TestSearchCaseInsensitive(t *testing.T) {
	r := newSearchRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines?q=IBUPRO", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []database.MasterMedicine `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(body.Data))
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	r := newSearchRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines?q=i", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short query, got %d", rec.Code)
	}
}
