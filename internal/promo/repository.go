package promo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
)

// Repository persists promo codes and their redemptions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByCode loads a promo by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// FindByID loads a promo by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// CountRedemptionsByUser counts prior redemptions of the promo by a user.
func (r *Repository) CountRedemptionsByUser(ctx context.Context, promoID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoRedemption{}).
		Where("promo_id = ? AND user_id = ?", promoID, userID).
		Count(&count).
		Error
	return count, err
}

// CountRedemptionsByGuest counts prior redemptions of the promo by a guest
// email.
func (r *Repository) CountRedemptionsByGuest(ctx context.Context, promoID uuid.UUID, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoRedemption{}).
		Where("promo_id = ? AND guest_email = ?", promoID, email).
		Count(&count).
		Error
	return count, err
}

// IncrementUsage bumps used_count while respecting the global cap. Zero rows
// affected means the cap is already reached.
func (r *Repository) IncrementUsage(ctx context.Context, promoID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", promoID).
		Update("used_count", gorm.Expr("used_count + 1"))
	return res.RowsAffected, res.Error
}

// InsertRedemption records one promo use against one order.
func (r *Repository) InsertRedemption(ctx context.Context, redemption *models.PromoRedemption) error {
	if redemption.ID == uuid.Nil {
		redemption.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(redemption).Error
}

// Create inserts a new promo code row.
func (r *Repository) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

// List returns all promo codes, newest first.
func (r *Repository) List(ctx context.Context) ([]models.PromoCode, error) {
	var rows []models.PromoCode
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// SetActive flips the active flag and reports whether a row matched.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ?", id).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}
