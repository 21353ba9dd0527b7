package catalog

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medipos/apotek-backend/pkg/database"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	searchLimit    = 20
	searchCacheTTL = 5 * time.Minute
)

type Handler struct {
	db    *gorm.DB
	cache SearchCache
}

func NewHandler(db *gorm.DB, cache SearchCache) *Handler {
	if cache == nil {
		cache = NoopSearchCache{}
	}
	return &Handler{db: db, cache: cache}
}

// Search returns catalog medicines whose name contains the query,
// case-insensitively. Results are cached per normalized query.
func (h *Handler) Search(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must be at least 2 characters"})
		return
	}

	cacheKey := "medsearch:" + query
	if cached, found, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && found {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	var medicines []database.MasterMedicine
	if err := h.db.Where("LOWER(name) LIKE ?", "%"+query+"%").
		Order("name ASC").
		Limit(searchLimit).
		Find(&medicines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search medicines"})
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, medicines, searchCacheTTL); err != nil {
		log.Warn().Err(err).Msg("Unable to cache medicine search")
	}

	c.JSON(http.StatusOK, gin.H{"data": medicines})
}
