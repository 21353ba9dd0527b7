package catalog

import (
	"errors"
	"strings"

	"github.com/medipos/apotek-backend/pkg/database"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no catalog medicine matched the given name.
	ErrNotFound = errors.New("medicine not found in master list")
	// ErrAmbiguous means more than one catalog medicine matched and the
	// caller must be more specific. No fuzzy disambiguation is attempted.
	ErrAmbiguous = errors.New("ambiguous medicine name")
)

// Resolver maps free-text medicine names to catalog entries.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve finds the catalog medicine for a free-text name. An exact
// case-insensitive match wins; otherwise a substring match is accepted only
// when it is unique.
func (r *Resolver) Resolve(name string) (*database.MasterMedicine, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, ErrNotFound
	}

	var exact []database.MasterMedicine
	if err := r.db.Where("LOWER(name) = ?", needle).Limit(2).Find(&exact).Error; err != nil {
		return nil, err
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		return nil, ErrAmbiguous
	}

	var partial []database.MasterMedicine
	if err := r.db.Where("LOWER(name) LIKE ?", "%"+needle+"%").Limit(2).Find(&partial).Error; err != nil {
		return nil, err
	}

	switch len(partial) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &partial[0], nil
	default:
		return nil, ErrAmbiguous
	}
}
