package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/models"
	"gorm.io/gorm"
)

// LinkRepository est une interface qui définit les méthodes d'accès aux données
type LinkRepository interface {
	CreateLink(link *models.Link) error
	GetLinkByShortCode(shortCode string) (*models.Link, error)
	GetAllLinks() ([]models.Link, error)
	GetLinksByCreator(createdBy string, limit int) ([]models.Link, error)
	IncrementClickCount(shortCode string) error
	CountLinks() (int64, error)
	CountLinksCreatedSince(since time.Time) (int64, error)
	SumClickCounts() (int64, error)
	CountDistinctCreators() (int64, error)
}

// GormLinkRepository est l'implémentation de LinkRepository utilisant GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository crée et retourne une nouvelle instance de GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink insère un nouveau lien dans la base de données.
// The unique index on short_code makes the check-and-reserve atomic: of two
// concurrent inserts for the same code exactly one succeeds, the other gets
// ErrCodeTaken.
func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrCodeTaken
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetLinkByShortCode récupère un lien de la base de données en utilisant son shortCode.
func (r *GormLinkRepository) GetLinkByShortCode(shortCode string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShortCodeNotFound
		}
		return nil, fmt.Errorf("failed to get link %q: %w", shortCode, err)
	}
	return &link, nil
}

// GetAllLinks récupère tous les liens de la base de données.
func (r *GormLinkRepository) GetAllLinks() ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all links: %w", err)
	}
	return links, nil
}

// GetLinksByCreator returns the links created by the given client key,
// most recently created first, truncated to limit.
func (r *GormLinkRepository) GetLinksByCreator(createdBy string, limit int) ([]models.Link, error) {
	var links []models.Link
	err := r.db.
		Where("created_by = ?", createdBy).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links for %q: %w", createdBy, err)
	}
	return links, nil
}

// IncrementClickCount atomically bumps the click counter of a link.
// The increment happens inside the UPDATE, so concurrent redirects never
// lose updates. A code with no matching row is a silent no-op.
func (r *GormLinkRepository) IncrementClickCount(shortCode string) error {
	err := r.db.Model(&models.Link{}).
		Where("short_code = ?", shortCode).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to increment click count for %q: %w", shortCode, err)
	}
	return nil
}

// CountLinks compte le nombre total de liens.
func (r *GormLinkRepository) CountLinks() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Link{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// CountLinksCreatedSince counts links created at or after the given instant.
func (r *GormLinkRepository) CountLinksCreatedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Link{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count links created since %v: %w", since, err)
	}
	return count, nil
}

// SumClickCounts returns the sum of the click counters across all links.
func (r *GormLinkRepository) SumClickCounts() (int64, error) {
	var total int64
	err := r.db.Model(&models.Link{}).
		Select("COALESCE(SUM(click_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum click counts: %w", err)
	}
	return total, nil
}

// CountDistinctCreators counts the distinct client keys that created links.
func (r *GormLinkRepository) CountDistinctCreators() (int64, error) {
	var count int64
	err := r.db.Model(&models.Link{}).
		Distinct("created_by").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct creators: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a unique constraint conflict.
// GORM translates these when the dialector supports it; the message check
// covers SQLite builds where translation is not enabled.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
