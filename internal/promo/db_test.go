package promo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

func setupPromoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	codes := `
CREATE TABLE IF NOT EXISTS promo_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  kind TEXT NOT NULL,
  percent INTEGER NOT NULL DEFAULT 0,
  amount_paisa INTEGER NOT NULL DEFAULT 0,
  max_discount_paisa INTEGER NOT NULL DEFAULT 0,
  min_subtotal_paisa INTEGER NOT NULL DEFAULT 0,
  starts_at DATETIME NOT NULL,
  ends_at DATETIME,
  max_uses INTEGER NOT NULL DEFAULT 0,
  per_user_limit INTEGER NOT NULL DEFAULT 0,
  used_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	codesIndex := `CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_codes_code ON promo_codes (code);`
	redemptions := `
CREATE TABLE IF NOT EXISTS promo_redemptions (
  id TEXT PRIMARY KEY,
  promo_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  user_id TEXT,
  guest_email TEXT,
  created_at DATETIME
);`
	redemptionsIndex := `CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_redemptions_order ON promo_redemptions (promo_id, order_id);`

	require.NoError(t, db.Exec(codes).Error)
	require.NoError(t, db.Exec(codesIndex).Error)
	require.NoError(t, db.Exec(redemptions).Error)
	require.NoError(t, db.Exec(redemptionsIndex).Error)

	return db
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newFixedClockService(t *testing.T, db *gorm.DB) *service {
	t.Helper()
	return &service{
		repo: NewRepository(db),
		now:  func() time.Time { return testNow },
	}
}

func uniqueCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s", prefix, suffix)
}

func mustCreatePromo(t *testing.T, db *gorm.DB, promo *models.PromoCode) *models.PromoCode {
	t.Helper()
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	if promo.Code == "" {
		promo.Code = uniqueCode("SAVE10")
	}
	if promo.Kind == "" {
		promo.Kind = enums.PromoKindPercentage
		promo.Percent = 10
	}
	if promo.StartsAt.IsZero() {
		promo.StartsAt = testNow.Add(-24 * time.Hour)
	}
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo: %v", err)
	}
	return promo
}
