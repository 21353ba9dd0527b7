package sale

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/activitylog"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

const billNumberAttempts = 3

var (
	errInsufficientStock = errors.New("insufficient stock")
	errBatchNotFound     = errors.New("inventory batch not found")
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

type SaleItemRequest struct {
	InventoryID  uuid.UUID `json:"inventory_id" binding:"required"`
	MedicineName string    `json:"medicine_name"`
	QuantitySold int       `json:"quantity_sold" binding:"required,min=1"`
	PricePerUnit float64   `json:"price_per_unit"`
	TotalPrice   float64   `json:"total_price"`
}

type CreateSaleRequest struct {
	StoreID      uuid.UUID         `json:"store_id" binding:"required"`
	CustomerName string            `json:"customer_name"`
	TotalAmount  float64           `json:"total_amount"`
	Items        []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Create processes a finalized cart into a durable sale: it verifies store
// ownership, checks and decrements batch stock, and records the sale with its
// line items, all inside a single transaction. Either everything commits or
// nothing does.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid caller identity"})
		return
	}

	// Ownership check runs before any mutation. The message stays generic so
	// callers cannot probe for store existence.
	var store database.Store
	if err := h.db.Where("id = ? AND owner_user_id = ?", req.StoreID, userID).First(&store).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Store verification failed or access denied"})
		return
	}

	var sale database.Sale
	var failedMedicine string

	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]database.SaleItem, 0, len(req.Items))

		for _, item := range req.Items {
			// Conditional decrement: the quantity guard in the WHERE clause
			// makes the stock check and the decrement one atomic statement,
			// and the row lock it takes serializes concurrent sales against
			// the same batch.
			res := tx.Model(&database.InventoryBatch{}).
				Where("id = ? AND store_id = ? AND quantity >= ?", item.InventoryID, req.StoreID, item.QuantitySold).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", item.QuantitySold))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var batch database.InventoryBatch
				if err := tx.Preload("Medicine").
					Where("id = ? AND store_id = ?", item.InventoryID, req.StoreID).
					First(&batch).Error; err != nil {
					failedMedicine = item.MedicineName
					return errBatchNotFound
				}
				failedMedicine = item.MedicineName
				if failedMedicine == "" {
					failedMedicine = batch.Medicine.Name
				}
				return errInsufficientStock
			}

			medicineName := item.MedicineName
			if medicineName == "" {
				var batch database.InventoryBatch
				if err := tx.Preload("Medicine").First(&batch, "id = ?", item.InventoryID).Error; err == nil {
					medicineName = batch.Medicine.Name
				}
			}

			lineTotal := item.TotalPrice
			if lineTotal == 0 {
				lineTotal = item.PricePerUnit * float64(item.QuantitySold)
			}
			total += lineTotal

			items = append(items, database.SaleItem{
				InventoryID:  item.InventoryID,
				MedicineName: medicineName,
				QuantitySold: item.QuantitySold,
				PricePerUnit: item.PricePerUnit,
				TotalPrice:   lineTotal,
			})
		}

		for attempt := 0; ; attempt++ {
			sale = database.Sale{
				StoreID:      req.StoreID,
				BillNumber:   newBillNumber(store.Name),
				CustomerName: req.CustomerName,
				TotalAmount:  total,
				SaleDate:     time.Now(),
				Items:        items,
			}
			// Nested transaction so a bill number collision rolls back to a
			// savepoint instead of aborting the outer transaction.
			err := tx.Transaction(func(tx2 *gorm.DB) error {
				return tx2.Create(&sale).Error
			})
			if err == nil {
				return nil
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < billNumberAttempts-1 {
				continue
			}
			return err
		}
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, errInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Insufficient stock for %s", failedMedicine),
			})
		case errors.Is(txErr, errBatchNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "One or more inventory items could not be found for this store",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process sale"})
		}
		return
	}

	h.audit.LogSale(c, sale.ID, sale.BillNumber, sale.TotalAmount)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"saleId":      sale.ID,
		"bill_number": sale.BillNumber,
	})
}

// List returns the caller's sales, newest first
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	var store database.Store
	if err := h.db.Where("owner_user_id = ?", userID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	var sales []database.Sale
	if err := h.db.Where("store_id = ?", store.ID).
		Preload("Items").
		Order("sale_date DESC").
		Limit(100).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// Get returns a single sale with its line items
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	saleID := c.Param("id")

	var store database.Store
	if err := h.db.Where("owner_user_id = ?", userID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	var sale database.Sale
	if err := h.db.Where("id = ? AND store_id = ?", saleID, store.ID).
		Preload("Items").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}
