package repository

import (
	"fmt"
	"time"

	"github.com/toolsuite/shortener/internal/models"
	"gorm.io/gorm"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux données
type ClickRepository interface {
	CreateClick(click *models.Click) error
	CountClicksByShortCode(shortCode string) (int64, error)
	CountClicksSince(shortCode string, since time.Time) (int64, error)
	GetRecentClicks(shortCode string, limit int) ([]models.Click, error)
}

// GormClickRepository est l'implémentation de l'interface ClickRepository utilisant GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository crée et retourne une nouvelle instance de GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick insère un nouvel enregistrement de clic dans la base de données.
func (r *GormClickRepository) CreateClick(click *models.Click) error {
	if err := r.db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicksByShortCode compte le nombre total de clics pour un code donné.
func (r *GormClickRepository) CountClicksByShortCode(shortCode string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("short_code = ?", shortCode).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks for code %q: %w", shortCode, err)
	}
	return count, nil
}

// CountClicksSince counts clicks for a code recorded at or after the given
// instant.
func (r *GormClickRepository) CountClicksSince(shortCode string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("short_code = ? AND timestamp >= ?", shortCode, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks for code %q since %v: %w", shortCode, since, err)
	}
	return count, nil
}

// GetRecentClicks returns the last limit clicks for a code in arrival
// order, newest last. Arrival order is the event timestamp, stamped when the
// redirect was served; insertion ids only break ties, because concurrent
// workers may persist events out of arrival order. Rows are fetched
// newest-first then reversed so the caller sees the display order directly.
func (r *GormClickRepository) GetRecentClicks(shortCode string, limit int) ([]models.Click, error) {
	var clicks []models.Click
	err := r.db.
		Where("short_code = ?", shortCode).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent clicks for code %q: %w", shortCode, err)
	}
	for i, j := 0, len(clicks)-1; i < j; i, j = i+1, j-1 {
		clicks[i], clicks[j] = clicks[j], clicks[i]
	}
	return clicks, nil
}

// interface conformance
var _ ClickRepository = (*GormClickRepository)(nil)
var _ LinkRepository = (*GormLinkRepository)(nil)
