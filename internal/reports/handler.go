package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type SalesReportRequest struct {
	StartDate string `form:"start_date"` // Format: 2024-01-01
	EndDate   string `form:"end_date"`   // Format: 2024-01-31
}

type DailySales struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
	Bills int     `json:"bills"`
}

type SalesReport struct {
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	TotalSales     float64      `json:"total_sales"`
	TotalBills     int          `json:"total_bills"`
	TotalItemsSold int          `json:"total_items_sold"`
	AveragePerBill float64      `json:"average_per_bill"`
	DailySales     []DailySales `json:"daily_sales"`
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

// GetSalesReport returns the sales report for a date range, defaulting to the
// current month.
func (h *Handler) GetSalesReport(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	var req SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endDate := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, now.Location())

	if req.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			startDate = parsed
		}
	}
	if req.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endDate = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, parsed.Location())
		}
	}

	var report SalesReport
	report.StartDate = startDate.Format("2006-01-02")
	report.EndDate = endDate.Format("2006-01-02")

	var totals struct {
		Sales float64
		Bills int64
	}
	h.db.Model(&database.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) as sales, COUNT(*) as bills").
		Where("store_id = ? AND sale_date >= ? AND sale_date <= ?", store.ID, startDate, endDate).
		Scan(&totals)

	report.TotalSales = totals.Sales
	report.TotalBills = int(totals.Bills)
	if report.TotalBills > 0 {
		report.AveragePerBill = report.TotalSales / float64(report.TotalBills)
	}

	var itemCount int64
	h.db.Model(&database.SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity_sold), 0)").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.store_id = ? AND sales.sale_date >= ? AND sales.sale_date <= ?", store.ID, startDate, endDate).
		Scan(&itemCount)
	report.TotalItemsSold = int(itemCount)

	var daily []DailySales
	h.db.Model(&database.Sale{}).
		Select("DATE(sale_date) as date, COALESCE(SUM(total_amount), 0) as sales, COUNT(*) as bills").
		Where("store_id = ? AND sale_date >= ? AND sale_date <= ?", store.ID, startDate, endDate).
		Group("DATE(sale_date)").
		Order("date ASC").
		Scan(&daily)
	report.DailySales = daily

	c.JSON(http.StatusOK, gin.H{"data": report})
}

type Summary struct {
	TodaySales    float64 `json:"today_sales"`
	TodayBills    int     `json:"today_bills"`
	TotalBatches  int     `json:"total_batches"`
	LowStockCount int     `json:"low_stock_count"`
	OutOfStock    int     `json:"out_of_stock_count"`
	ExpiringSoon  int     `json:"expiring_soon_count"`
}

// GetSummary returns dashboard stats for the caller's store
func (h *Handler) GetSummary(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	var summary Summary

	today := time.Now().Truncate(24 * time.Hour)
	var todayTotals struct {
		Sales float64
		Bills int64
	}
	h.db.Model(&database.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) as sales, COUNT(*) as bills").
		Where("store_id = ? AND sale_date >= ?", store.ID, today).
		Scan(&todayTotals)
	summary.TodaySales = todayTotals.Sales
	summary.TodayBills = int(todayTotals.Bills)

	var totalBatches int64
	h.db.Model(&database.InventoryBatch{}).
		Where("store_id = ?", store.ID).
		Count(&totalBatches)
	summary.TotalBatches = int(totalBatches)

	var lowStock int64
	h.db.Model(&database.InventoryBatch{}).
		Where("store_id = ? AND quantity > 0 AND quantity < 10", store.ID).
		Count(&lowStock)
	summary.LowStockCount = int(lowStock)

	var outOfStock int64
	h.db.Model(&database.InventoryBatch{}).
		Where("store_id = ? AND quantity <= 0", store.ID).
		Count(&outOfStock)
	summary.OutOfStock = int(outOfStock)

	cutoff := time.Now().AddDate(0, 0, 90)
	var expiring int64
	h.db.Model(&database.InventoryBatch{}).
		Where("store_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", store.ID, cutoff).
		Count(&expiring)
	summary.ExpiringSoon = int(expiring)

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// ListActivityLogs returns the caller's recent audit-trail entries
func (h *Handler) ListActivityLogs(c *gin.Context) {
	userID := c.GetString("user_id")

	var logs []database.ActivityLog
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
