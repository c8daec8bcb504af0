package services

import (
	"time"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/repository"
)

// RecentClicksLimit is how many recent clicks the analytics endpoint returns.
const RecentClicksLimit = 50

// ClickStats holds the aggregated click counts for one short code.
// TodayClicks counts events on the same UTC calendar day as the reference
// instant; WeeklyClicks counts events within the trailing seven days.
type ClickStats struct {
	TotalClicks  int64
	TodayClicks  int64
	WeeklyClicks int64
}

// ClickService is the append-only click ledger. It is keyed purely by the
// short code string and never checks a code against the links table: an
// unknown code is the caller's mistake, not the ledger's concern.
type ClickService struct {
	clickRepo repository.ClickRepository
}

// NewClickService crée et retourne une nouvelle instance de ClickService.
func NewClickService(clickRepo repository.ClickRepository) *ClickService {
	return &ClickService{clickRepo: clickRepo}
}

// RecordClick persists one click event. An empty referrer is normalized to
// the "direct" sentinel before storage.
func (s *ClickService) RecordClick(event models.ClickEvent) error {
	referrer := event.Referrer
	if referrer == "" {
		referrer = models.ReferrerDirect
	}
	click := &models.Click{
		ShortCode: event.ShortCode,
		Timestamp: event.Timestamp,
		UserAgent: event.UserAgent,
		IPAddress: event.IPAddress,
		Referrer:  referrer,
	}
	if err := s.clickRepo.CreateClick(click); err != nil {
		return apperrors.ErrClickRecordingFailed{ShortCode: event.ShortCode, Reason: err.Error()}
	}
	return nil
}

// Aggregate computes the click totals for a code relative to now.
// Day boundaries are UTC; local-time calendars are ambiguous across
// deployments, so the convention is fixed here rather than left to callers.
func (s *ClickService) Aggregate(shortCode string, now time.Time) (*ClickStats, error) {
	total, err := s.clickRepo.CountClicksByShortCode(shortCode)
	if err != nil {
		return nil, err
	}
	today, err := s.clickRepo.CountClicksSince(shortCode, startOfUTCDay(now))
	if err != nil {
		return nil, err
	}
	weekly, err := s.clickRepo.CountClicksSince(shortCode, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	return &ClickStats{
		TotalClicks:  total,
		TodayClicks:  today,
		WeeklyClicks: weekly,
	}, nil
}

// Recent returns the last limit clicks for a code in arrival order, newest
// last.
func (s *ClickService) Recent(shortCode string, limit int) ([]models.Click, error) {
	return s.clickRepo.GetRecentClicks(shortCode, limit)
}

// startOfUTCDay truncates t to midnight of its UTC calendar day.
func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
