package database

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedMedicines ingests a CSV catalog (name,manufacturer) into master_medicines,
// skipping rows already present. Missing file is not fatal; the catalog can be
// loaded later without blocking startup.
func SeedMedicines(db *gorm.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Warn().Err(err).Str("path", csvPath).Msg("Medicine catalog not loaded")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn().Err(err).Msg("Unable to read medicine catalog header")
		return
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("Skipping unreadable medicine row")
			continue
		}
		if len(record) < 1 {
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		manufacturer := ""
		if len(record) > 1 {
			manufacturer = strings.TrimSpace(record[1])
		}

		var existing MasterMedicine
		if err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error; err == nil {
			continue
		}

		med := MasterMedicine{Name: name, Manufacturer: manufacturer}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&med).Error; err != nil {
			log.Warn().Err(err).Str("medicine", name).Msg("Unable to insert medicine")
			continue
		}
		rows++
	}

	log.Info().Int("rows", rows).Msg("Seeded medicine catalog")
}
