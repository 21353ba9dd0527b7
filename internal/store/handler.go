package store

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/pkg/activitylog"
	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
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

type StoreInput struct {
	Name       string  `json:"name" binding:"required"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode string  `json:"postal_code"`
	Phone      string  `json:"phone"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Create registers the caller's pharmacy. Each account can own one store.
func (h *Handler) Create(c *gin.Context) {
	var input StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid caller identity"})
		return
	}

	store := database.Store{
		OwnerUserID: userID,
		Name:        input.Name,
		Address:     input.Address,
		City:        input.City,
		Province:    input.Province,
		PostalCode:  input.PostalCode,
		Phone:       input.Phone,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	if err := h.db.Create(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A store is already registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	h.audit.LogActivity(c, "store_create", "store", &store.ID, input)

	c.JSON(http.StatusCreated, gin.H{"data": store})
}

// GetMine returns the caller's store
func (h *Handler) GetMine(c *gin.Context) {
	userID := c.GetString("user_id")

	var store database.Store
	if err := h.db.Where("owner_user_id = ?", userID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": store})
}

// UpdateMine updates the caller's store details
func (h *Handler) UpdateMine(c *gin.Context) {
	var input StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")

	var store database.Store
	if err := h.db.Where("owner_user_id = ?", userID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	store.Name = input.Name
	store.Address = input.Address
	store.City = input.City
	store.Province = input.Province
	store.PostalCode = input.PostalCode
	store.Phone = input.Phone
	store.Latitude = input.Latitude
	store.Longitude = input.Longitude

	if err := h.db.Save(&store).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store"})
		return
	}

	h.audit.LogActivity(c, "store_update", "store", &store.ID, input)

	c.JSON(http.StatusOK, gin.H{"data": store})
}
