package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"forkful/internal/config"
	"forkful/internal/db"
	"forkful/models"
)

func main() {
	csvPath := "ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported, err := importIngredients(database, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// readCSV reads headerless (name, measurement unit) rows. Rows missing either
// column are skipped.
func readCSV(path string) ([]models.Ingredient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	records := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			continue
		}
		records = append(records, models.Ingredient{Name: name, MeasurementUnit: unit})
	}

	return records, nil
}

// importIngredients upserts each record keyed on the (name, unit) pair, so
// re-running the import on the same file does not duplicate rows.
func importIngredients(database *gorm.DB, records []models.Ingredient) (int, error) {
	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			var existing models.Ingredient
			err := tx.Where("name = ? AND measurement_unit = ?", record.Name, record.MeasurementUnit).
				First(&existing).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("find ingredient %q: %w", record.Name, err)
			}

			ingredient := record
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("create ingredient %q: %w", record.Name, err)
			}
			return nil
		}); err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+1, record.Name, err)
		}
		imported++
	}
	return imported, nil
}
