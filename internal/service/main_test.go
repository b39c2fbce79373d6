package service

import (
	"testing"

	"quill/internal/config"
	"quill/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

// testImageService stores images under a per-test temp dir.
func testImageService(t *testing.T) *ImageService {
	t.Helper()
	return NewImageService(&config.Config{
		ImageUploadDir:       t.TempDir(),
		ImageMaxUploadSizeMB: 10,
	})
}
