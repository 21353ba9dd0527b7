package inventory

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/internal/catalog"
	"github.com/medipos/apotek-backend/pkg/activitylog"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

type ImportHandler struct {
	db       *gorm.DB
	resolver *catalog.Resolver
	audit    *activitylog.Logger
}

func NewImportHandler(db *gorm.DB) *ImportHandler {
	return &ImportHandler{
		db:       db,
		resolver: catalog.NewResolver(db),
		audit:    activitylog.NewLogger(db),
	}
}

type ImportRequest struct {
	StoreID uuid.UUID   `json:"store_id" binding:"required"`
	Items   []ImportRow `json:"inventoryItems" binding:"required,min=1"`
}

type ImportResult struct {
	Success       bool       `json:"success"`
	InsertedCount int        `json:"insertedCount"`
	SkippedCount  int        `json:"skippedCount"`
	Errors        []RowError `json:"errors"`
	Message       string     `json:"message"`
}

// Import validates a batch of already-parsed inventory rows, inserts the valid
// subset in one bulk insert, and reports per-row diagnostics. A bad row never
// blocks the others; partial success is the normal outcome, not an error.
func (h *ImportHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid caller identity"})
		return
	}

	// Ownership is checked once, before any row work.
	var store database.Store
	if err := h.db.Where("id = ? AND owner_user_id = ?", req.StoreID, userID).First(&store).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Store verification failed or access denied"})
		return
	}

	candidates := make([]database.InventoryBatch, 0, len(req.Items))
	rowErrors := []RowError{}

	for i, row := range req.Items {
		if row.RowNumber == 0 {
			row.RowNumber = i + 1
		}

		batch, err := validateRow(h.resolver, req.StoreID, row)
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				RowNumber: row.RowNumber,
				Error:     err.Error(),
				RowData:   row,
			})
			continue
		}
		candidates = append(candidates, *batch)
	}

	inserted := 0
	if len(candidates) > 0 {
		if err := h.db.Create(&candidates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ImportResult{
				Success:       false,
				InsertedCount: 0,
				SkippedCount:  len(req.Items),
				Errors:        []RowError{},
				Message:       "Bulk insert failed, no rows were imported",
			})
			return
		}
		inserted = len(candidates)
	}

	h.audit.LogImport(c, inserted, len(rowErrors))

	c.JSON(http.StatusOK, ImportResult{
		Success:       len(rowErrors) == 0 && inserted > 0,
		InsertedCount: inserted,
		SkippedCount:  len(rowErrors),
		Errors:        rowErrors,
		Message:       fmt.Sprintf("Import completed: %d inserted, %d skipped", inserted, len(rowErrors)),
	})
}
