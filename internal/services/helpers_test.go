package services

import (
	"testing"
	"time"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/cache"
	"github.com/emutrack/emutrack-backend/internal/config"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A pooled second connection to ":memory:" would open a separate
	// empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Game{},
		&models.Device{},
		&models.Emulator{},
		&models.PerformanceScale{},
		&models.CustomFieldDefinition{},
		&models.Listing{},
		&models.CustomFieldValue{},
		&models.Vote{},
		&models.UserBan{},
		&models.TrustAction{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		JWTAccessExpiry:       15 * time.Minute,
		JWTRefreshExpiry:      168 * time.Hour,
		AutoApproveTrustScore: 100,
		EditWindow:            60 * time.Minute,
		StatsCacheTTL:         5 * time.Minute,
	}
}

func newTestListingService(db *gorm.DB) (*ListingService, *notify.MemorySink) {
	sink := &notify.MemorySink{}
	svc := NewListingService(db, NewTrustService(), sink, cache.NewMemory(), testConfig())
	return svc, sink
}

func newTestVoteService(db *gorm.DB) (*VoteService, *notify.MemorySink) {
	sink := &notify.MemorySink{}
	svc := NewVoteService(db, NewTrustService(), sink)
	return svc, sink
}

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type catalog struct {
	Game        *models.Game
	Device      *models.Device
	Emulator    *models.Emulator
	Performance *models.PerformanceScale
}

func createCatalog(t *testing.T, db *gorm.DB) catalog {
	t.Helper()
	game := &models.Game{ID: uuid.New(), Title: "Wind Waker", System: "GameCube"}
	device := &models.Device{ID: uuid.New(), Brand: "Retroid", Model: "Pocket 4 Pro"}
	emulator := &models.Emulator{ID: uuid.New(), Name: "Dolphin-" + uuid.NewString()[:8]}
	perf := &models.PerformanceScale{ID: uuid.New(), Label: "Great-" + uuid.NewString()[:8], Rank: 4}
	require.NoError(t, db.Create(game).Error)
	require.NoError(t, db.Create(device).Error)
	require.NoError(t, db.Create(emulator).Error)
	require.NoError(t, db.Create(perf).Error)
	return catalog{Game: game, Device: device, Emulator: emulator, Performance: perf}
}

func createPendingListing(t *testing.T, db *gorm.DB, author *models.User, cat catalog) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:            uuid.New(),
		GameID:        cat.Game.ID,
		DeviceID:      cat.Device.ID,
		EmulatorID:    cat.Emulator.ID,
		PerformanceID: cat.Performance.ID,
		AuthorID:      author.ID,
		Status:        models.StatusPending,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func assertCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperr.CodeOf(err))
}
