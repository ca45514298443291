package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func submitRequest(cat catalog) *dto.CreateListingRequest {
	return &dto.CreateListingRequest{
		GameID:        cat.Game.ID,
		DeviceID:      cat.Device.ID,
		EmulatorID:    cat.Emulator.ID,
		PerformanceID: cat.Performance.ID,
		Notes:         "runs well",
	}
}

func eventTypes(sink *notify.MemorySink) []string {
	events := sink.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestListingService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("new author lands in the pending queue", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		listing, err := svc.Submit(ctx, author.ID, submitRequest(cat))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, listing.Status)
		assert.Nil(t, listing.ProcessedByUserID)

		var entry models.TrustAction
		require.NoError(t, db.Where("user_id = ? AND action = ?", author.ID, models.TrustListingCreated).First(&entry).Error)
		assert.Equal(t, listing.ID.String(), entry.ExternalKey)

		assert.Equal(t, []string{notify.EventListingCreated}, eventTypes(sink))
	})

	t.Run("trusted role is auto-approved", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleTrusted)
		cat := createCatalog(t, db)

		listing, err := svc.Submit(ctx, author.ID, submitRequest(cat))
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, listing.Status)
		require.NotNil(t, listing.ProcessedByUserID)
		assert.Equal(t, author.ID, *listing.ProcessedByUserID)
		require.NotNil(t, listing.ProcessedNotes)
		assert.Contains(t, *listing.ProcessedNotes, "trusted author role")
	})

	t.Run("trust score threshold is auto-approved", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		trust := NewTrustService()
		for i := 0; i < 10; i++ {
			require.NoError(t, trust.Apply(db, author.ID, models.TrustListingApproved, uuid.NewString()))
		}

		listing, err := svc.Submit(ctx, author.ID, submitRequest(cat))
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, listing.Status)
		require.NotNil(t, listing.ProcessedNotes)
		assert.Contains(t, *listing.ProcessedNotes, "trust score")
	})

	t.Run("duplicate tuple conflicts", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		_, err := svc.Submit(ctx, author.ID, submitRequest(cat))
		require.NoError(t, err)

		_, err = svc.Submit(ctx, author.ID, submitRequest(cat))
		assertCode(t, err, apperr.CodeConflict)
	})

	t.Run("unknown game fails validation", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		req := submitRequest(cat)
		req.GameID = uuid.New()
		_, err := svc.Submit(ctx, author.ID, req)
		assertCode(t, err, apperr.CodeValidation)
	})

	t.Run("missing required select field writes nothing", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		def := models.CustomFieldDefinition{
			ID:         uuid.New(),
			EmulatorID: cat.Emulator.ID,
			Name:       "driver",
			Label:      "Graphics driver",
			Type:       models.FieldTypeSelect,
			IsRequired: true,
			Options:    datatypes.JSON([]byte(`[{"value":"vulkan","label":"Vulkan"},{"value":"opengl","label":"OpenGL"}]`)),
		}
		require.NoError(t, db.Create(&def).Error)

		_, err := svc.Submit(ctx, author.ID, submitRequest(cat))
		assertCode(t, err, apperr.CodeValidation)

		var count int64
		db.Model(&models.Listing{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("valid custom field values are stored", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)

		def := models.CustomFieldDefinition{
			ID:         uuid.New(),
			EmulatorID: cat.Emulator.ID,
			Name:       "driver",
			Label:      "Graphics driver",
			Type:       models.FieldTypeSelect,
			IsRequired: true,
			Options:    datatypes.JSON([]byte(`[{"value":"vulkan","label":"Vulkan"}]`)),
		}
		require.NoError(t, db.Create(&def).Error)

		req := submitRequest(cat)
		req.CustomFieldValues = map[string]json.RawMessage{"driver": json.RawMessage(`"vulkan"`)}

		listing, err := svc.Submit(ctx, author.ID, req)
		require.NoError(t, err)

		var stored models.CustomFieldValue
		require.NoError(t, db.Where("listing_id = ?", listing.ID).First(&stored).Error)
		assert.Equal(t, def.ID, stored.FieldDefinitionID)
		assert.JSONEq(t, `"vulkan"`, string(stored.Value))
	})
}

func TestListingService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("pending listing is approved and stamped", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		approved, err := svc.Approve(ctx, moderator.ID, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
		require.NotNil(t, approved.ProcessedByUserID)
		assert.Equal(t, moderator.ID, *approved.ProcessedByUserID)
		assert.NotNil(t, approved.ProcessedAt)
		assert.Nil(t, approved.ProcessedNotes)

		var entry models.TrustAction
		require.NoError(t, db.Where("user_id = ? AND action = ?", author.ID, models.TrustListingApproved).First(&entry).Error)

		assert.Contains(t, eventTypes(sink), notify.EventListingApproved)
	})

	t.Run("already processed listing is not pending", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Approve(ctx, moderator.ID, listing.ID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, moderator.ID, listing.ID)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("banned author is auto-rejected and the call still errors", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		ban := models.UserBan{
			ID:         uuid.New(),
			UserID:     author.ID,
			BannedByID: moderator.ID,
			Reason:     "repeated fake reports",
			IsActive:   true,
		}
		require.NoError(t, db.Create(&ban).Error)

		_, err := svc.Approve(ctx, moderator.ID, listing.ID)
		assertCode(t, err, apperr.CodeBadRequest)

		var reloaded models.Listing
		require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
		assert.Equal(t, models.StatusRejected, reloaded.Status)
		require.NotNil(t, reloaded.ProcessedNotes)
		assert.Contains(t, *reloaded.ProcessedNotes, "repeated fake reports")

		assert.Contains(t, eventTypes(sink), notify.EventListingRejected)
	})

	t.Run("expired ban does not block approval", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		expired := time.Now().Add(-time.Hour)
		ban := models.UserBan{
			ID:         uuid.New(),
			UserID:     author.ID,
			BannedByID: moderator.ID,
			Reason:     "old offence",
			ExpiresAt:  &expired,
			IsActive:   true,
		}
		require.NoError(t, db.Create(&ban).Error)

		approved, err := svc.Approve(ctx, moderator.ID, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
	})

	t.Run("vanished acting user is an internal error", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Approve(ctx, uuid.New(), listing.ID)
		assertCode(t, err, apperr.CodeInternal)
	})

	t.Run("plain user cannot approve", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		outsider := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Approve(ctx, outsider.ID, listing.ID)
		assertCode(t, err, apperr.CodeForbidden)
	})
}

func TestListingService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("pending listing is rejected with notes", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		rejected, err := svc.Reject(ctx, moderator.ID, listing.ID, "duplicate of an existing report")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, rejected.Status)
		require.NotNil(t, rejected.ProcessedNotes)
		assert.Equal(t, "duplicate of an existing report", *rejected.ProcessedNotes)

		var entry models.TrustAction
		require.NoError(t, db.Where("user_id = ? AND action = ?", author.ID, models.TrustListingRejected).First(&entry).Error)

		assert.Contains(t, eventTypes(sink), notify.EventListingRejected)
	})

	t.Run("notes are required", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Reject(ctx, moderator.ID, listing.ID, "")
		assertCode(t, err, apperr.CodeValidation)
	})
}

func TestListingService_BulkApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("already processed ids are skipped, not mutated", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)

		a := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
		b := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
		c := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)

		// B was processed earlier by someone else.
		bStamp := time.Now().Add(-time.Hour)
		require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"status":       models.StatusApproved,
			"processed_at": bStamp,
		}).Error)

		result, err := svc.BulkApprove(ctx, moderator.ID, []uuid.UUID{a.ID, b.ID, c.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, result.ProcessedCount)
		assert.Equal(t, 0, result.AutoRejectedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.False(t, result.BannedEncountered)

		var reloaded models.Listing
		require.NoError(t, db.First(&reloaded, "id = ?", b.ID).Error)
		require.NotNil(t, reloaded.ProcessedAt)
		assert.WithinDuration(t, bStamp, *reloaded.ProcessedAt, time.Second)
	})

	t.Run("banned authors are partitioned out and auto-rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)

		goodAuthor := createUser(t, db, models.RoleUser)
		badAuthor := createUser(t, db, models.RoleUser)
		good := createPendingListing(t, db, goodAuthor, cat)
		bad := createPendingListing(t, db, badAuthor, cat)

		require.NoError(t, db.Create(&models.UserBan{
			ID:         uuid.New(),
			UserID:     badAuthor.ID,
			BannedByID: moderator.ID,
			Reason:     "spam",
			IsActive:   true,
		}).Error)

		result, err := svc.BulkApprove(ctx, moderator.ID, []uuid.UUID{good.ID, bad.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, result.ProcessedCount)
		assert.Equal(t, 1, result.AutoRejectedCount)
		assert.Equal(t, 0, result.SkippedCount)
		assert.True(t, result.BannedEncountered)

		var reloadedGood, reloadedBad models.Listing
		require.NoError(t, db.First(&reloadedGood, "id = ?", good.ID).Error)
		require.NoError(t, db.First(&reloadedBad, "id = ?", bad.ID).Error)
		assert.Equal(t, models.StatusApproved, reloadedGood.Status)
		assert.Equal(t, models.StatusRejected, reloadedBad.Status)
		require.NotNil(t, reloadedBad.ProcessedNotes)
		assert.Contains(t, *reloadedBad.ProcessedNotes, "spam")
	})

	t.Run("zero eligible listings errors", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		moderator := createUser(t, db, models.RoleModerator)

		_, err := svc.BulkApprove(ctx, moderator.ID, []uuid.UUID{uuid.New(), uuid.New()})
		assertCode(t, err, apperr.CodeNotFound)
	})
}

func TestListingService_BulkReject(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newTestListingService(db)
	moderator := createUser(t, db, models.RoleModerator)
	cat := createCatalog(t, db)

	a := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
	b := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)

	result, err := svc.BulkReject(ctx, moderator.ID, []uuid.UUID{a.ID, b.ID, uuid.New()}, "bulk cleanup")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 1, result.SkippedCount)

	var reloaded models.Listing
	require.NoError(t, db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Equal(t, models.StatusRejected, reloaded.Status)
	require.NotNil(t, reloaded.ProcessedNotes)
	assert.Equal(t, "bulk cleanup", *reloaded.ProcessedNotes)
}

func TestListingService_OverrideStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("super admin can flip a terminal state", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		admin := createUser(t, db, models.RoleSuperAdmin)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Reject(ctx, moderator.ID, listing.ID, "mistake")
		require.NoError(t, err)

		overridden, err := svc.OverrideStatus(ctx, admin.ID, listing.ID, models.StatusApproved, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, overridden.Status)
		require.NotNil(t, overridden.ProcessedByUserID)
		assert.Equal(t, admin.ID, *overridden.ProcessedByUserID)
		// Prior notes survive when none are supplied.
		require.NotNil(t, overridden.ProcessedNotes)
		assert.Equal(t, "mistake", *overridden.ProcessedNotes)
	})

	t.Run("moderator tier is not enough", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.OverrideStatus(ctx, moderator.ID, listing.ID, models.StatusApproved, nil)
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		admin := createUser(t, db, models.RoleSuperAdmin)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.OverrideStatus(ctx, admin.ID, listing.ID, "LIMBO", nil)
		assertCode(t, err, apperr.CodeValidation)
	})
}

func TestListingService_EditWindow(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*gorm.DB, *ListingService, *models.User, *models.Listing) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		moderator := createUser(t, db, models.RoleModerator)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)
		_, err := svc.Approve(ctx, moderator.ID, listing.ID)
		require.NoError(t, err)
		return db, svc, author, listing
	}

	t.Run("owner can edit inside the window", func(t *testing.T) {
		db, svc, author, listing := setup(t)

		eligibility, err := svc.CanEdit(author.ID, listing.ID)
		require.NoError(t, err)
		assert.True(t, eligibility.CanEdit)
		assert.Greater(t, eligibility.RemainingSeconds, int64(0))

		updated, err := svc.Update(ctx, author.ID, listing.ID, "new notes")
		require.NoError(t, err)
		assert.Equal(t, "new notes", updated.Notes)

		var reloaded models.Listing
		require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
		assert.Equal(t, "new notes", reloaded.Notes)
	})

	t.Run("non-owner cannot edit", func(t *testing.T) {
		db, svc, _, listing := setup(t)
		outsider := createUser(t, db, models.RoleUser)

		eligibility, err := svc.CanEdit(outsider.ID, listing.ID)
		require.NoError(t, err)
		assert.False(t, eligibility.CanEdit)

		_, err = svc.Update(ctx, outsider.ID, listing.ID, "hijack")
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("expired window fails closed and leaves notes alone", func(t *testing.T) {
		db, svc, author, listing := setup(t)

		stale := time.Now().Add(-61 * time.Minute)
		require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", listing.ID).
			Update("processed_at", stale).Error)

		eligibility, err := svc.CanEdit(author.ID, listing.ID)
		require.NoError(t, err)
		assert.False(t, eligibility.CanEdit)
		assert.Equal(t, "edit window expired", eligibility.Reason)

		_, err = svc.Update(ctx, author.ID, listing.ID, "too late")
		assertCode(t, err, apperr.CodeBadRequest)

		var reloaded models.Listing
		require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
		assert.NotEqual(t, "too late", reloaded.Notes)
	})

	t.Run("pending listing is not editable", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		eligibility, err := svc.CanEdit(author.ID, listing.ID)
		require.NoError(t, err)
		assert.False(t, eligibility.CanEdit)

		_, err = svc.Update(ctx, author.ID, listing.ID, "nope")
		assertCode(t, err, apperr.CodeBadRequest)
	})
}

func TestListingService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("super admin hard-deletes with dependents", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		voter := createUser(t, db, models.RoleUser)
		admin := createUser(t, db, models.RoleSuperAdmin)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		require.NoError(t, db.Create(&models.Vote{
			ID: uuid.New(), UserID: voter.ID, ListingID: listing.ID, Value: true,
		}).Error)

		require.NoError(t, svc.Delete(ctx, admin.ID, listing.ID))

		var listings, votes int64
		db.Model(&models.Listing{}).Where("id = ?", listing.ID).Count(&listings)
		db.Model(&models.Vote{}).Where("listing_id = ?", listing.ID).Count(&votes)
		assert.Equal(t, int64(0), listings)
		assert.Equal(t, int64(0), votes)
	})

	t.Run("admin tier is not enough", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestListingService(db)
		author := createUser(t, db, models.RoleUser)
		admin := createUser(t, db, models.RoleAdmin)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		err := svc.Delete(ctx, admin.ID, listing.ID)
		assertCode(t, err, apperr.CodeForbidden)
	})
}

func TestListingService_Stats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newTestListingService(db)
	moderator := createUser(t, db, models.RoleModerator)
	cat := createCatalog(t, db)

	a := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
	createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(2), stats.Total)

	// An approval invalidates the cached counts.
	_, err = svc.Approve(ctx, moderator.ID, a.ID)
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(2), stats.Total)
}

func TestListingService_ListBySuccessRate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newTestListingService(db)
	voteSvc, _ := newTestVoteService(db)
	moderator := createUser(t, db, models.RoleModerator)
	cat := createCatalog(t, db)

	low := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
	high := createPendingListing(t, db, createUser(t, db, models.RoleUser), cat)
	for _, l := range []*models.Listing{low, high} {
		_, err := svc.Approve(ctx, moderator.ID, l.ID)
		require.NoError(t, err)
	}

	up1 := createUser(t, db, models.RoleUser)
	up2 := createUser(t, db, models.RoleUser)
	_, err := voteSvc.Vote(ctx, up1.ID, high.ID, true)
	require.NoError(t, err)
	_, err = voteSvc.Vote(ctx, up2.ID, high.ID, true)
	require.NoError(t, err)
	_, err = voteSvc.Vote(ctx, up1.ID, low.ID, false)
	require.NoError(t, err)

	page, err := svc.List(dto.ListingFilter{
		Status: models.StatusApproved,
		SortBy: "success_rate",
	})
	require.NoError(t, err)
	require.Len(t, page.Listings, 2)
	assert.Equal(t, high.ID, page.Listings[0].ID)
	assert.Equal(t, 1.0, page.Listings[0].SuccessRate)
	assert.Equal(t, 0.0, page.Listings[1].SuccessRate)
}
