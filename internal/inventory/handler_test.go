package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/database"
)

func (e *importEnv) stockRouterAs(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	h := NewHandler(e.db)
	r.GET("/api/v1/inventory", h.List)
	r.GET("/api/v1/inventory/alerts", h.GetAlerts)
	r.PUT("/api/v1/inventory/:id/stock", h.UpdateStock)
	return r
}

func (e *importEnv) seedBatch(t *testing.T, medicineName string, qty int, expiry *time.Time) database.InventoryBatch {
	t.Helper()
	var medicine database.MasterMedicine
	if err := e.db.Where("name = ?", medicineName).First(&medicine).Error; err != nil {
		t.Fatalf("lookup medicine: %v", err)
	}
	batch := database.InventoryBatch{
		StoreID:    e.store.ID,
		MedicineID: medicine.ID,
		Quantity:   qty,
		ExpiryDate: expiry,
	}
	if err := e.db.Create(&batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch
}

func putStock(t *testing.T, r *gin.Engine, batchID uuid.UUID, adjustment int) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"quantity": adjustment})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/inventory/"+batchID.String()+"/stock", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStockAdjusts(t *testing.T) {
	env := newImportEnv(t)
	r := env.stockRouterAs(env.owner.ID)
	batch := env.seedBatch(t, "Paracetamol 500mg", 20, nil)

	rec := putStock(t, r, batch.ID, -5)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var got database.InventoryBatch
	if err := env.db.First(&got, "id = ?", batch.ID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if got.Quantity != 15 {
		t.Fatalf("expected quantity 15, got %d", got.Quantity)
	}
}

func TestUpdateStockRejectsNegativeResult(t *testing.T) {
	env := newImportEnv(t)
	r := env.stockRouterAs(env.owner.ID)
	batch := env.seedBatch(t, "Paracetamol 500mg", 3, nil)

	rec := putStock(t, r, batch.ID, -4)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative result, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var got database.InventoryBatch
	if err := env.db.First(&got, "id = ?", batch.ID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if got.Quantity != 3 {
		t.Fatalf("expected quantity unchanged at 3, got %d", got.Quantity)
	}
}

func TestUpdateStockUnknownBatch(t *testing.T) {
	env := newImportEnv(t)
	r := env.stockRouterAs(env.owner.ID)

	rec := putStock(t, r, uuid.New(), 5)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown batch, got %d", rec.Code)
	}
}

func TestListFilters(t *testing.T) {
	env := newImportEnv(t)
	r := env.stockRouterAs(env.owner.ID)

	soon := time.Now().AddDate(0, 1, 0)
	env.seedBatch(t, "Paracetamol 500mg", 100, nil)
	env.seedBatch(t, "Paracetamol 500mg", 4, nil)
	env.seedBatch(t, "Amoxicillin 250mg", 0, nil)
	env.seedBatch(t, "Amoxicillin 250mg", 50, &soon)

	cases := []struct {
		filter string
		want   int
	}{
		{"", 4},
		{"low", 1},
		{"out", 1},
		{"expiring", 1},
	}

	for _, tc := range cases {
		url := "/api/v1/inventory"
		if tc.filter != "" {
			url += "?filter=" + tc.filter
		}
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("filter %q: expected 200, got %d", tc.filter, rec.Code)
		}
		var body struct {
			Data []database.InventoryBatch `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("filter %q: decode: %v", tc.filter, err)
		}
		if len(body.Data) != tc.want {
			t.Fatalf("filter %q: expected %d batches, got %d", tc.filter, tc.want, len(body.Data))
		}
	}
}
