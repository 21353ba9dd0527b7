package inventory

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/activitylog"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

const (
	lowStockThreshold = 10
	expiryWindowDays  = 90
)

type Handler struct {
	db    *gorm.DB
	audit *activitylog.Logger
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:    db,
		audit: activitylog.NewLogger(db),
	}
}

func (h *Handler) storeFor(c *gin.Context) (*database.Store, bool) {
	userID := c.GetString("user_id")

	var store database.Store
	if err := h.db.Where("owner_user_id = ?", userID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return nil, false
	}
	return &store, true
}

// List returns the caller's inventory batches. filter=low|out|expiring
// narrows the result.
func (h *Handler) List(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	query := h.db.Where("store_id = ?", store.ID).Preload("Medicine")

	switch c.Query("filter") {
	case "low":
		query = query.Where("quantity > 0 AND quantity < ?", lowStockThreshold)
	case "out":
		query = query.Where("quantity <= 0")
	case "expiring":
		cutoff := time.Now().AddDate(0, 0, expiryWindowDays)
		query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff)
	}

	var batches []database.InventoryBatch
	if err := query.Order("created_at DESC").Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batches})
}

// GetAlerts returns batches that need attention: low stock, out of stock,
// and expiring within the alert window.
func (h *Handler) GetAlerts(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	var lowStock []database.InventoryBatch
	h.db.Where("store_id = ? AND quantity > 0 AND quantity < ?", store.ID, lowStockThreshold).
		Preload("Medicine").
		Order("quantity ASC").
		Limit(10).
		Find(&lowStock)

	var outOfStock []database.InventoryBatch
	h.db.Where("store_id = ? AND quantity <= 0", store.ID).
		Preload("Medicine").
		Limit(10).
		Find(&outOfStock)

	cutoff := time.Now().AddDate(0, 0, expiryWindowDays)
	var expiring []database.InventoryBatch
	h.db.Where("store_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", store.ID, cutoff).
		Preload("Medicine").
		Order("expiry_date ASC").
		Limit(10).
		Find(&expiring)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
			"expiring":     expiring,
		},
	})
}

type UpdateStockRequest struct {
	Quantity int    `json:"quantity" binding:"required"` // signed adjustment
	Note     string `json:"note"`
}

// UpdateStock applies a manual stock adjustment to one batch. The quantity
// floor still holds: an adjustment may not take a batch below zero.
func (h *Handler) UpdateStock(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch id"})
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var batch database.InventoryBatch
	if err := h.db.Where("id = ? AND store_id = ?", batchID, store.ID).First(&batch).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory batch not found"})
		return
	}

	newQty := batch.Quantity + req.Quantity
	if newQty < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot go below zero"})
		return
	}

	batch.Quantity = newQty
	if err := h.db.Save(&batch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	h.audit.LogStockAdjust(c, batch.ID, req.Quantity, newQty)

	c.JSON(http.StatusOK, gin.H{"data": batch})
}
