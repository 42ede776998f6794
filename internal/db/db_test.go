package db

import (
	"path/filepath"
	"testing"

	"techmarks/internal/config"
	"techmarks/internal/logger"
	"techmarks/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMigratesAndSeeds(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "marks.db"),
	}

	gdb, err := Open(cfg, logger.NewNop())
	require.NoError(t, err)

	var categories []models.Category
	require.NoError(t, gdb.Order("id ASC").Find(&categories).Error)
	require.Len(t, categories, len(DefaultCategories))
	for i, c := range categories {
		assert.Equal(t, DefaultCategories[i], c.DisplayName)
	}

	// a second run must not duplicate the master data
	seeded, err := SeedCategories(gdb, DefaultCategories)
	require.NoError(t, err)
	assert.False(t, seeded)

	var count int64
	gdb.Model(&models.Category{}).Count(&count)
	assert.EqualValues(t, len(DefaultCategories), count)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"}, logger.NewNop())
	assert.Error(t, err)
}
