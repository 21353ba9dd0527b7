package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

type importEnv struct {
	db    *gorm.DB
	owner database.User
	store database.Store
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &importEnv{db: db}

	env.owner = database.User{Email: "owner@apotek.test", Name: "Owner", Role: "owner", IsActive: true}
	if err := db.Create(&env.owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	env.store = database.Store{OwnerUserID: env.owner.ID, Name: "Apotek Sehat"}
	if err := db.Create(&env.store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}

	medicines := []database.MasterMedicine{
		{Name: "Paracetamol 500mg", Manufacturer: "Generik"},
		{Name: "Amoxicillin 250mg", Manufacturer: "Generik"},
	}
	if err := db.Create(&medicines).Error; err != nil {
		t.Fatalf("seed medicines: %v", err)
	}

	return env
}

func (e *importEnv) routerAs(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	h := NewImportHandler(e.db)
	r.POST("/api/v1/inventory/import", h.Import)
	return r
}

func (e *importEnv) postImport(t *testing.T, r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestImportPartialSuccess(t *testing.T) {
	env := newImportEnv(t)
	r := env.routerAs(env.owner.ID)

	rec := env.postImport(t, r, map[string]any{
		"store_id": env.store.ID,
		"inventoryItems": []map[string]any{
			{"row_number": 1, "medicine_name": "Paracetamol 500mg", "quantity": 100, "mrp": 25.5, "expiry_date": "2027-03-31"},
			{"row_number": 2, "medicine_name": "Obat Ajaib", "quantity": 10},
			{"row_number": 3, "medicine_name": "Amoxicillin 250mg", "quantity": 10, "expiry_date": "sometime next year"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for partial success, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var result ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Success {
		t.Fatalf("expected success false when rows were skipped")
	}
	if result.InsertedCount != 1 {
		t.Fatalf("expected 1 inserted, got %d", result.InsertedCount)
	}
	if result.SkippedCount != 2 {
		t.Fatalf("expected 2 skipped, got %d", result.SkippedCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(result.Errors))
	}
	if result.Errors[0].RowNumber != 2 || result.Errors[1].RowNumber != 3 {
		t.Fatalf("expected errors for rows 2 and 3, got %d and %d", result.Errors[0].RowNumber, result.Errors[1].RowNumber)
	}

	var batches int64
	env.db.Model(&database.InventoryBatch{}).Where("store_id = ?", env.store.ID).Count(&batches)
	if batches != 1 {
		t.Fatalf("expected 1 inserted batch, got %d", batches)
	}
}

func TestImportAllValid(t *testing.T) {
	env := newImportEnv(t)
	r := env.routerAs(env.owner.ID)

	rec := env.postImport(t, r, map[string]any{
		"store_id": env.store.ID,
		"inventoryItems": []map[string]any{
			{"row_number": 1, "medicine_name": "Paracetamol 500mg", "quantity": 100},
			{"row_number": 2, "medicine_name": "Amoxicillin 250mg", "quantity": "40", "purchase_price": "64.00"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var result ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success true, got %+v", result)
	}
	if result.InsertedCount != 2 || result.SkippedCount != 0 {
		t.Fatalf("expected 2 inserted / 0 skipped, got %d / %d", result.InsertedCount, result.SkippedCount)
	}
}

func TestImportRejectsNonOwner(t *testing.T) {
	env := newImportEnv(t)

	intruder := database.User{Email: "other@apotek.test", Name: "Other", Role: "owner", IsActive: true}
	if err := env.db.Create(&intruder).Error; err != nil {
		t.Fatalf("seed intruder: %v", err)
	}
	r := env.routerAs(intruder.ID)

	rec := env.postImport(t, r, map[string]any{
		"store_id": env.store.ID,
		"inventoryItems": []map[string]any{
			{"row_number": 1, "medicine_name": "Paracetamol 500mg", "quantity": 100},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-owner, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var batches int64
	env.db.Model(&database.InventoryBatch{}).Count(&batches)
	if batches != 0 {
		t.Fatalf("expected no batches inserted, got %d", batches)
	}
}

func TestImportRowIndependence(t *testing.T) {
	env := newImportEnv(t)
	r := env.routerAs(env.owner.ID)

	// A malformed first row must not block the valid one after it.
	rec := env.postImport(t, r, map[string]any{
		"store_id": env.store.ID,
		"inventoryItems": []map[string]any{
			{"row_number": 1, "quantity": 10},
			{"row_number": 2, "medicine_name": "Paracetamol 500mg", "quantity": 10},
		},
	})

	var result ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.InsertedCount != 1 {
		t.Fatalf("expected the valid row to be inserted, got %d", result.InsertedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].RowNumber != 1 {
		t.Fatalf("expected a single error for row 1, got %+v", result.Errors)
	}
}
