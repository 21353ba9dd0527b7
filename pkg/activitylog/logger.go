package activitylog

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

// Logger handles activity logging for the audit trail
type Logger struct {
	db *gorm.DB
}

// NewLogger creates a new activity logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// LogActivity creates an activity log entry for the authenticated caller.
func (l *Logger) LogActivity(c *gin.Context, action, entityType string, entityID *uuid.UUID, details interface{}) error {
	userIDStr := c.GetString("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return err
	}

	// Attach the caller's store when one exists
	var storeID *uuid.UUID
	var store database.Store
	if err := l.db.Where("owner_user_id = ?", userID).First(&store).Error; err == nil {
		storeID = &store.ID
	}

	detailsJSON := ""
	if details != nil {
		if jsonBytes, err := json.Marshal(details); err == nil {
			detailsJSON = string(jsonBytes)
		}
	}

	entry := database.ActivityLog{
		UserID:     userID,
		StoreID:    storeID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		IPAddress:  c.ClientIP(),
	}

	return l.db.Create(&entry).Error
}

// LogSale logs a completed sale
func (l *Logger) LogSale(c *gin.Context, saleID uuid.UUID, billNumber string, total float64) error {
	return l.LogActivity(c, "sale", "sale", &saleID, map[string]interface{}{
		"bill_number":  billNumber,
		"total_amount": total,
	})
}

// LogImport logs a bulk inventory import
func (l *Logger) LogImport(c *gin.Context, inserted, skipped int) error {
	return l.LogActivity(c, "import", "inventory_batch", nil, map[string]interface{}{
		"inserted": inserted,
		"skipped":  skipped,
	})
}

// LogStockAdjust logs a manual stock adjustment
func (l *Logger) LogStockAdjust(c *gin.Context, batchID uuid.UUID, delta, newQty int) error {
	return l.LogActivity(c, "stock_adjust", "inventory_batch", &batchID, map[string]interface{}{
		"delta":        delta,
		"new_quantity": newQty,
	})
}
