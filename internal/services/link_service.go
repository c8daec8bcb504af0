// Package services contains the business logic layer for the URL shortener application
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/generator"
	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/repository"
)

// DefaultMaxRetries bounds the collision retry loop when no cap is
// configured. With a 62^6 keyspace a single retry is already rare; hitting
// the cap means the keyspace is effectively exhausted and the request fails
// with ErrShortCodeGenerationFailed.
const DefaultMaxRetries = 5

// ListMyLinksLimit caps how many links a single client can list at once.
const ListMyLinksLimit = 50

// GlobalStats aggregates service-wide usage numbers.
type GlobalStats struct {
	TotalLinks    int64
	TotalClicks   int64
	TodayLinks    int64
	ActiveClients int64
}

// LinkService provides business logic methods for managing shortened links.
// It owns code generation, collision handling and the optional Redis lookup
// cache; persistence goes through the repository interface.
type LinkService struct {
	linkRepo   repository.LinkRepository
	gen        *generator.Generator
	codeLength int
	maxRetries int
	cache      *redis.Client // nil disables the resolve cache
	cacheTTL   time.Duration
}

// NewLinkService creates and returns a new instance of LinkService.
// cache may be nil, in which case every resolve hits the database.
func NewLinkService(linkRepo repository.LinkRepository, gen *generator.Generator, codeLength, maxRetries int, cache *redis.Client, cacheTTL time.Duration) *LinkService {
	if codeLength <= 0 {
		codeLength = generator.DefaultLength
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &LinkService{
		linkRepo:   linkRepo,
		gen:        gen,
		codeLength: codeLength,
		maxRetries: maxRetries,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// validateURL rejects anything that is not an absolute URL with both a
// scheme and a host. Validation happens before any state is touched.
func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.ErrInvalidURL
	}
	return nil
}

// CreateLink creates a new shortened link for longURL, owned by createdBy.
//
// When customCode is non-empty it is reserved as-is; a conflict with an
// existing link returns ErrCodeTaken and leaves the existing record
// untouched. Otherwise a random code is generated and inserted directly:
// the unique index is the collision check, so two concurrent creations can
// never both win the same code. On conflict a fresh code is generated, up
// to the configured retry cap.
func (s *LinkService) CreateLink(longURL, customCode, createdBy string) (*models.Link, error) {
	if err := validateURL(longURL); err != nil {
		return nil, err
	}

	if customCode != "" {
		link := &models.Link{
			ShortCode: customCode,
			LongURL:   longURL,
			CreatedBy: createdBy,
			CreatedAt: time.Now(),
		}
		if err := s.linkRepo.CreateLink(link); err != nil {
			return nil, err
		}
		return link, nil
	}

	for i := 0; i < s.maxRetries; i++ {
		code, err := s.gen.Generate(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		link := &models.Link{
			ShortCode: code,
			LongURL:   longURL,
			CreatedBy: createdBy,
			CreatedAt: time.Now(),
		}
		err = s.linkRepo.CreateLink(link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, apperrors.ErrCodeTaken) {
			log.Printf("Short code '%s' already exists, retrying generation (%d/%d)...", code, i+1, s.maxRetries)
			continue
		}
		return nil, err
	}

	return nil, apperrors.ErrShortCodeGenerationFailed
}

// GetLinkByShortCode retrieves a link from the database using its short code.
func (s *LinkService) GetLinkByShortCode(shortCode string) (*models.Link, error) {
	return s.linkRepo.GetLinkByShortCode(shortCode)
}

// Resolve returns the destination URL for a short code. When a Redis cache
// is configured the lookup is cache-aside: hit returns immediately, miss
// falls through to the database and populates the cache. Cache failures are
// logged and ignored; the database remains the source of truth.
func (s *LinkService) Resolve(ctx context.Context, shortCode string) (string, error) {
	if s.cache != nil {
		if longURL, err := s.cache.Get(ctx, cacheKey(shortCode)).Result(); err == nil {
			return longURL, nil
		}
	}

	link, err := s.linkRepo.GetLinkByShortCode(shortCode)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(shortCode), link.LongURL, s.cacheTTL).Err(); err != nil {
			log.Printf("WARNING: failed to cache short code '%s': %v", shortCode, err)
		}
	}
	return link.LongURL, nil
}

// IncrementClickCount bumps the click counter of a link. Unknown codes are
// a silent no-op: the caller resolved existence already, and a counter miss
// must never surface on the redirect path.
func (s *LinkService) IncrementClickCount(shortCode string) error {
	return s.linkRepo.IncrementClickCount(shortCode)
}

// ListByCreator returns the links created by the given client key, newest
// first. Non-positive or oversized limits are clamped to ListMyLinksLimit.
func (s *LinkService) ListByCreator(createdBy string, limit int) ([]models.Link, error) {
	if limit <= 0 || limit > ListMyLinksLimit {
		limit = ListMyLinksLimit
	}
	return s.linkRepo.GetLinksByCreator(createdBy, limit)
}

// GetGlobalStats returns service-wide totals. "Today" is the UTC calendar
// day containing now.
func (s *LinkService) GetGlobalStats(now time.Time) (*GlobalStats, error) {
	totalLinks, err := s.linkRepo.CountLinks()
	if err != nil {
		return nil, err
	}
	totalClicks, err := s.linkRepo.SumClickCounts()
	if err != nil {
		return nil, err
	}
	todayLinks, err := s.linkRepo.CountLinksCreatedSince(startOfUTCDay(now))
	if err != nil {
		return nil, err
	}
	activeClients, err := s.linkRepo.CountDistinctCreators()
	if err != nil {
		return nil, err
	}
	return &GlobalStats{
		TotalLinks:    totalLinks,
		TotalClicks:   totalClicks,
		TodayLinks:    todayLinks,
		ActiveClients: activeClients,
	}, nil
}

func cacheKey(shortCode string) string {
	return "short:" + shortCode
}
