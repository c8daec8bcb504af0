package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/generator"
	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/repository"
)

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

// sequenceSource replays the given indices, one per generated character.
func sequenceSource(values []int) generator.IntSource {
	i := 0
	return func(n int) (int, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func newTestLinkService(t *testing.T, src generator.IntSource) (*LinkService, repository.LinkRepository) {
	t.Helper()
	repo := repository.NewLinkRepository(newTestDB(t))
	return NewLinkService(repo, generator.New(src), 6, DefaultMaxRetries, nil, 0), repo
}

func TestCreateLinkValidation(t *testing.T) {
	svc, _ := newTestLinkService(t, nil)

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "example.com/page"},
		{"scheme only", "https://"},
		{"relative path", "/just/a/path"},
		{"garbage", "not a url at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLink(tt.url, "", "192.0.2.1")
			assert.ErrorIs(t, err, apperrors.ErrInvalidURL)
		})
	}
}

func TestCreateLinkGeneratedCode(t *testing.T) {
	svc, repo := newTestLinkService(t, nil)

	link, err := svc.CreateLink("https://example.com/page", "", "192.0.2.1")
	require.NoError(t, err)
	assert.Len(t, link.ShortCode, 6)
	assert.Equal(t, "https://example.com/page", link.LongURL)
	assert.Equal(t, "192.0.2.1", link.CreatedBy)

	got, err := repo.GetLinkByShortCode(link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, link.LongURL, got.LongURL)
}

func TestCreateLinkCustomCode(t *testing.T) {
	svc, _ := newTestLinkService(t, nil)

	link, err := svc.CreateLink("https://example.com", "promo24", "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "promo24", link.ShortCode)

	// Same code again conflicts and leaves the original untouched.
	_, err = svc.CreateLink("https://other.example", "promo24", "192.0.2.2")
	assert.ErrorIs(t, err, apperrors.ErrCodeTaken)

	longURL, err := svc.Resolve(context.Background(), "promo24")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", longURL)
}

func TestCreateLinkRetriesOnCollision(t *testing.T) {
	// First draw produces "aaaaaa" which is already taken; the retry draws
	// "bbbbbb" and wins.
	src := sequenceSource([]int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1})
	svc, repo := newTestLinkService(t, src)

	require.NoError(t, repo.CreateLink(&models.Link{ShortCode: "aaaaaa", LongURL: "https://taken.example"}))

	link, err := svc.CreateLink("https://example.com", "", "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "bbbbbb", link.ShortCode)
}

func TestCreateLinkGenerationExhausted(t *testing.T) {
	// Every draw yields "aaaaaa"; with the code taken, all retries collide.
	svc, repo := newTestLinkService(t, sequenceSource([]int{0}))

	require.NoError(t, repo.CreateLink(&models.Link{ShortCode: "aaaaaa", LongURL: "https://taken.example"}))

	_, err := svc.CreateLink("https://example.com", "", "192.0.2.1")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeGenerationFailed)
}

func TestResolveNotFound(t *testing.T) {
	svc, _ := newTestLinkService(t, nil)

	_, err := svc.Resolve(context.Background(), "nosuch")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeNotFound)
}

func TestListByCreatorClampsLimit(t *testing.T) {
	svc, repo := newTestLinkService(t, nil)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < ListMyLinksLimit+10; i++ {
		require.NoError(t, repo.CreateLink(&models.Link{
			ShortCode: "code" + string(rune('a'+i/26)) + string(rune('a'+i%26)),
			LongURL:   "https://example.com",
			CreatedBy: "192.0.2.1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	links, err := svc.ListByCreator("192.0.2.1", 0)
	require.NoError(t, err)
	assert.Len(t, links, ListMyLinksLimit)

	links, err = svc.ListByCreator("192.0.2.1", ListMyLinksLimit+5)
	require.NoError(t, err)
	assert.Len(t, links, ListMyLinksLimit)

	links, err = svc.ListByCreator("192.0.2.1", 3)
	require.NoError(t, err)
	assert.Len(t, links, 3)
}

func TestGetGlobalStats(t *testing.T) {
	svc, repo := newTestLinkService(t, nil)

	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	fixtures := []models.Link{
		{ShortCode: "aaa001", LongURL: "https://a.example", CreatedBy: "192.0.2.1", ClickCount: 4, CreatedAt: now.Add(-30 * time.Hour)},
		{ShortCode: "bbb001", LongURL: "https://b.example", CreatedBy: "192.0.2.2", ClickCount: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{ShortCode: "ccc001", LongURL: "https://c.example", CreatedBy: "192.0.2.1", ClickCount: 0, CreatedAt: now.Add(-time.Hour)},
	}
	for i := range fixtures {
		require.NoError(t, repo.CreateLink(&fixtures[i]))
	}

	stats, err := svc.GetGlobalStats(now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalLinks)
	assert.Equal(t, int64(5), stats.TotalClicks)
	assert.Equal(t, int64(2), stats.TodayLinks, "only links created on the current UTC day count")
	assert.Equal(t, int64(2), stats.ActiveClients)
}
