package product

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  image_url TEXT,
  category TEXT NOT NULL DEFAULT '',
  price_paisa INTEGER NOT NULL,
  stitching_fee_paisa INTEGER NOT NULL DEFAULT 0,
  stitching_available INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	inventory := `
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL DEFAULT '',
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME,
  PRIMARY KEY (product_id, variant_id),
  CHECK (available_qty >= 0)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(inventory).Error)

	return db
}
