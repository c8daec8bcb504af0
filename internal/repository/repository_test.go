package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/models"
)

// newTestDB opens an in-memory SQLite database with the schema migrated.
// A single connection keeps the in-memory database alive and serializes
// concurrent writers.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Link{}, &models.Click{}))
	return db
}

func TestCreateAndGetLink(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	link := &models.Link{
		ShortCode: "abc123",
		LongURL:   "https://example.com/page",
		CreatedBy: "192.0.2.1",
	}
	require.NoError(t, repo.CreateLink(link))
	assert.NotZero(t, link.ID)

	got, err := repo.GetLinkByShortCode("abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got.LongURL)
	assert.Equal(t, "192.0.2.1", got.CreatedBy)
	assert.Equal(t, int64(0), got.ClickCount)
}

func TestCreateLinkDuplicateCode(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	require.NoError(t, repo.CreateLink(&models.Link{ShortCode: "taken1", LongURL: "https://a.example"}))

	err := repo.CreateLink(&models.Link{ShortCode: "taken1", LongURL: "https://b.example"})
	assert.ErrorIs(t, err, apperrors.ErrCodeTaken)

	// The original record is untouched.
	got, err := repo.GetLinkByShortCode("taken1")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", got.LongURL)
}

func TestGetLinkByShortCodeNotFound(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	_, err := repo.GetLinkByShortCode("nosuch")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeNotFound)
}

func TestIncrementClickCountConcurrent(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	require.NoError(t, repo.CreateLink(&models.Link{ShortCode: "race01", LongURL: "https://example.com"}))

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementClickCount("race01"))
		}()
	}
	wg.Wait()

	got, err := repo.GetLinkByShortCode("race01")
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines), got.ClickCount, "no increment may be lost")
}

func TestIncrementClickCountUnknownCodeIsNoop(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	assert.NoError(t, repo.IncrementClickCount("nosuch"))
}

func TestGetLinksByCreatorOrderAndLimit(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	codes := []string{"old001", "mid001", "new001"}
	for i, code := range codes {
		require.NoError(t, repo.CreateLink(&models.Link{
			ShortCode: code,
			LongURL:   "https://example.com/" + code,
			CreatedBy: "192.0.2.1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.CreateLink(&models.Link{
		ShortCode: "other1",
		LongURL:   "https://example.com/other",
		CreatedBy: "192.0.2.2",
		CreatedAt: base.Add(10 * time.Hour),
	}))

	links, err := repo.GetLinksByCreator("192.0.2.1", 2)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "new001", links[0].ShortCode)
	assert.Equal(t, "mid001", links[1].ShortCode)
}

func TestLinkAggregates(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	fixtures := []models.Link{
		{ShortCode: "aaa001", LongURL: "https://a.example", CreatedBy: "192.0.2.1", ClickCount: 3, CreatedAt: base.Add(-48 * time.Hour)},
		{ShortCode: "bbb001", LongURL: "https://b.example", CreatedBy: "192.0.2.1", ClickCount: 5, CreatedAt: base.Add(time.Hour)},
		{ShortCode: "ccc001", LongURL: "https://c.example", CreatedBy: "192.0.2.2", ClickCount: 0, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range fixtures {
		require.NoError(t, repo.CreateLink(&fixtures[i]))
	}

	total, err := repo.CountLinks()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	today, err := repo.CountLinksCreatedSince(base)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	clicks, err := repo.SumClickCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(8), clicks)

	creators, err := repo.CountDistinctCreators()
	require.NoError(t, err)
	assert.Equal(t, int64(2), creators)
}

func TestSumClickCountsEmpty(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	clicks, err := repo.SumClickCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), clicks)
}

func TestClickCounts(t *testing.T) {
	repo := NewClickRepository(newTestDB(t))

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	timestamps := []time.Time{
		now.Add(-10 * 24 * time.Hour),
		now.Add(-2 * 24 * time.Hour),
		now.Add(-time.Hour),
	}
	for _, ts := range timestamps {
		require.NoError(t, repo.CreateClick(&models.Click{
			ShortCode: "abc123",
			Timestamp: ts,
			IPAddress: "192.0.2.1",
			Referrer:  models.ReferrerDirect,
		}))
	}
	require.NoError(t, repo.CreateClick(&models.Click{
		ShortCode: "other1",
		Timestamp: now,
		IPAddress: "192.0.2.2",
		Referrer:  models.ReferrerDirect,
	}))

	total, err := repo.CountClicksByShortCode("abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	weekly, err := repo.CountClicksSince("abc123", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), weekly)

	none, err := repo.CountClicksByShortCode("nosuch")
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)
}

func TestGetRecentClicksOrder(t *testing.T) {
	repo := NewClickRepository(newTestDB(t))

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ips := []string{"192.0.2.1", "192.0.2.2", "192.0.2.3", "192.0.2.4", "192.0.2.5"}
	for i, ip := range ips {
		require.NoError(t, repo.CreateClick(&models.Click{
			ShortCode: "abc123",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			IPAddress: ip,
			Referrer:  models.ReferrerDirect,
		}))
	}

	// The last 3 clicks, in arrival order: newest last.
	clicks, err := repo.GetRecentClicks("abc123", 3)
	require.NoError(t, err)
	require.Len(t, clicks, 3)
	assert.Equal(t, "192.0.2.3", clicks[0].IPAddress)
	assert.Equal(t, "192.0.2.4", clicks[1].IPAddress)
	assert.Equal(t, "192.0.2.5", clicks[2].IPAddress)
}

func TestGetRecentClicksArrivalOrderBeatsInsertionOrder(t *testing.T) {
	repo := NewClickRepository(newTestDB(t))

	// Persist events in the reverse of their arrival timestamps, as a pool
	// of concurrent workers may: the reader must still see arrival order.
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	for i := 4; i >= 0; i-- {
		require.NoError(t, repo.CreateClick(&models.Click{
			ShortCode: "abc123",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			IPAddress: "192.0.2.1",
			Referrer:  models.ReferrerDirect,
		}))
	}

	clicks, err := repo.GetRecentClicks("abc123", 10)
	require.NoError(t, err)
	require.Len(t, clicks, 5)
	for i := 1; i < len(clicks); i++ {
		assert.True(t, !clicks[i].Timestamp.Before(clicks[i-1].Timestamp),
			"clicks must come back oldest to newest by arrival timestamp")
	}
	assert.True(t, clicks[0].Timestamp.Equal(base))
	assert.True(t, clicks[4].Timestamp.Equal(base.Add(4*time.Second)))
}
