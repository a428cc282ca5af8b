package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
)

func newTestSqlite(t *testing.T) *SqliteService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ConversationArchive{}, &model.BlockEvent{}))

	return &SqliteService{db: db}
}

func TestSqliteArchiveRoundTrip(t *testing.T) {
	svc := newTestSqlite(t)

	now := time.Now()
	require.NoError(t, svc.SaveArchive(&model.ConversationArchive{
		ID:           "archive-1",
		SessionID:    "session_abc123",
		UserName:     "Priya",
		MessageCount: 4,
		Transcript:   `[{"role":"user","content":"hi"}]`,
		StartedAt:    now.Add(-time.Hour),
		EndedAt:      now,
		Summarized:   true,
		CreatedAt:    now,
	}))

	archive, err := svc.GetArchive("session_abc123")
	require.NoError(t, err)
	assert.Equal(t, "Priya", archive.UserName)
	assert.True(t, archive.Summarized)
}

func TestSqliteGetArchiveUnknownSessionIsNotFound(t *testing.T) {
	svc := newTestSqlite(t)

	_, err := svc.GetArchive("session_missing")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "Archive not found", appErr.Message)
}

func TestSqliteBlockEventCount(t *testing.T) {
	svc := newTestSqlite(t)

	count, err := svc.BlockEventCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, svc.SaveBlockEvent(&model.BlockEvent{
		ID:           "event-1",
		Address:      "198.51.100.1",
		Reason:       "Exceeded daily limit: 61 requests in 24 hours",
		RequestCount: 61,
		CreatedAt:    time.Now(),
	}))

	count, err = svc.BlockEventCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
