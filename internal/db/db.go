package db

import (
	"fmt"
	"techmarks/internal/config"
	"techmarks/internal/logger"
	"techmarks/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultCategories 预置分类，按 id 升序创建
var DefaultCategories = []string{
	"Go",
	"PHP",
	"JavaScript",
	"Python",
	"Rust",
	"Database",
	"Infrastructure",
	"Security",
	"Frontend",
	"Career",
}

// Open connects to the configured database, migrates the schema and seeds
// the category master data.
func Open(cfg *config.Config, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established", logger.String("driver", cfg.DBDriver))

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Info("Database migration completed")

	seeded, err := SeedCategories(gdb, DefaultCategories)
	if err != nil {
		return nil, err
	}
	if seeded {
		log.Info("Initial categories created successfully", logger.Int("count", len(DefaultCategories)))
	} else {
		log.Debug("Categories already seeded, skipping")
	}

	return gdb, nil
}

// Migrate creates or updates the tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Bookmark{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedCategories inserts names only when the table is empty. It reports
// whether anything was written.
func SeedCategories(gdb *gorm.DB, names []string) (bool, error) {
	var count int64
	if err := gdb.Model(&models.Category{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			if err := tx.Create(&models.Category{DisplayName: name}).Error; err != nil {
				return fmt.Errorf("create category %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
