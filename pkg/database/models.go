package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is embedded by all primary entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when none is set. Generating keys app-side keeps
// the models portable between Postgres and the sqlite test database.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User represents a pharmacy account holder
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Role         string `gorm:"default:'owner'" json:"role"` // owner, staff
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// Store represents a pharmacy. At most one store per owner account,
// enforced by the unique index on owner_user_id.
type Store struct {
	BaseModel
	OwnerUserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"owner_user_id"`
	Owner       User      `gorm:"foreignKey:OwnerUserID" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Province    string    `json:"province"`
	PostalCode  string    `json:"postal_code"`
	Phone       string    `json:"phone"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// MasterMedicine is the global medicine catalog shared by all stores.
// Read-only reference data outside the seed path.
type MasterMedicine struct {
	BaseModel
	Name         string `gorm:"index;not null" json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// InventoryBatch is a distinct receipt of a medicine into store stock.
// Quantity must never go below zero.
type InventoryBatch struct {
	BaseModel
	StoreID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"store_id"`
	Store         Store          `gorm:"foreignKey:StoreID" json:"-"`
	MedicineID    uuid.UUID      `gorm:"type:uuid;not null" json:"medicine_id"`
	Medicine      MasterMedicine `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	BatchNumber   string         `json:"batch_number"`
	Quantity      int            `gorm:"not null;default:0" json:"quantity"`
	PurchasePrice *float64       `json:"purchase_price"`
	MRP           *float64       `json:"mrp"`
	ExpiryDate    *time.Time     `json:"expiry_date"`
}

// Sale represents a completed checkout. Immutable once created.
type Sale struct {
	BaseModel
	StoreID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"store_id"`
	Store        Store      `gorm:"foreignKey:StoreID" json:"-"`
	BillNumber   string     `gorm:"uniqueIndex;not null" json:"bill_number"`
	CustomerName string     `json:"customer_name"`
	TotalAmount  float64    `gorm:"not null" json:"total_amount"`
	SaleDate     time.Time  `json:"sale_date"`
	Items        []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem is one batch line in a sale. The medicine name is denormalized so
// historical bills survive later catalog edits.
type SaleItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SaleID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"sale_id"`
	InventoryID  uuid.UUID      `gorm:"type:uuid;not null" json:"inventory_id"`
	Inventory    InventoryBatch `gorm:"foreignKey:InventoryID" json:"-"`
	MedicineName string         `gorm:"not null" json:"medicine_name"`
	QuantitySold int            `gorm:"not null" json:"quantity_sold"`
	PricePerUnit float64        `json:"price_per_unit"`
	TotalPrice   float64        `json:"total_price"`
}

func (s *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ActivityLog tracks user actions for the audit trail
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user"`
	StoreID    *uuid.UUID `gorm:"type:uuid" json:"store_id"`
	Action     string     `gorm:"not null" json:"action"` // sale, import, stock_adjust, store_update
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Store{},
		&MasterMedicine{},
		&InventoryBatch{},
		&Sale{},
		&SaleItem{},
		&ActivityLog{},
	)
}
