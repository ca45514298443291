package services

import (
	"context"
	"testing"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ledgerRows(t *testing.T, db *gorm.DB, userID uuid.UUID) []models.TrustAction {
	t.Helper()
	var rows []models.TrustAction
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at").Find(&rows).Error)
	return rows
}

func TestVoteService_Vote(t *testing.T) {
	ctx := context.Background()

	t.Run("first vote credits the listing author", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestVoteService(db)
		author := createUser(t, db, models.RoleUser)
		voter := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		result, err := svc.Vote(ctx, voter.ID, listing.ID, true)
		require.NoError(t, err)
		assert.Equal(t, "created", result.Action)
		require.NotNil(t, result.Vote)
		assert.True(t, result.Vote.Value)
		assert.Equal(t, 1.0, result.SuccessRate)

		rows := ledgerRows(t, db, author.ID)
		require.Len(t, rows, 1)
		assert.Equal(t, models.TrustUpvote, rows[0].Action)
		assert.Equal(t, 1, rows[0].Weight)

		assert.Equal(t, []string{notify.EventListingVoted}, eventTypes(sink))
	})

	t.Run("same value twice toggles the vote off", func(t *testing.T) {
		db := setupTestDB(t)
		svc, sink := newTestVoteService(db)
		author := createUser(t, db, models.RoleUser)
		voter := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Vote(ctx, voter.ID, listing.ID, true)
		require.NoError(t, err)
		sink.Reset()

		result, err := svc.Vote(ctx, voter.ID, listing.ID, true)
		require.NoError(t, err)
		assert.Equal(t, "removed", result.Action)
		assert.Nil(t, result.Vote)
		assert.Equal(t, 0.0, result.SuccessRate)

		var votes int64
		db.Model(&models.Vote{}).Where("listing_id = ?", listing.ID).Count(&votes)
		assert.Equal(t, int64(0), votes)

		// The ledger is append-only: an apply row plus its reversal, net zero.
		rows := ledgerRows(t, db, author.ID)
		require.Len(t, rows, 2)
		assert.True(t, rows[1].Reversal)
		assert.Equal(t, -rows[0].Weight, rows[1].Weight)

		trust := NewTrustService()
		score, err := trust.ScoreFor(db, author.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, score)

		// Removal is silent.
		assert.Empty(t, sink.Events())
	})

	t.Run("opposite value flips the vote with reverse then apply", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestVoteService(db)
		author := createUser(t, db, models.RoleUser)
		voter := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Vote(ctx, voter.ID, listing.ID, true)
		require.NoError(t, err)

		result, err := svc.Vote(ctx, voter.ID, listing.ID, false)
		require.NoError(t, err)
		assert.Equal(t, "changed", result.Action)
		require.NotNil(t, result.Vote)
		assert.False(t, result.Vote.Value)
		assert.Equal(t, 0.0, result.SuccessRate)

		var vote models.Vote
		require.NoError(t, db.Where("user_id = ? AND listing_id = ?", voter.ID, listing.ID).First(&vote).Error)
		assert.False(t, vote.Value)

		rows := ledgerRows(t, db, author.ID)
		require.Len(t, rows, 3)
		assert.Equal(t, models.TrustUpvote, rows[0].Action)
		assert.True(t, rows[1].Reversal)
		assert.Equal(t, models.TrustDownvote, rows[2].Action)

		trust := NewTrustService()
		score, err := trust.ScoreFor(db, author.ID)
		require.NoError(t, err)
		assert.Equal(t, -1, score)
	})

	t.Run("unknown listing", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestVoteService(db)
		voter := createUser(t, db, models.RoleUser)

		_, err := svc.Vote(ctx, voter.ID, uuid.New(), true)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("unknown voter", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestVoteService(db)
		author := createUser(t, db, models.RoleUser)
		cat := createCatalog(t, db)
		listing := createPendingListing(t, db, author, cat)

		_, err := svc.Vote(ctx, uuid.New(), listing.ID, true)
		assertCode(t, err, apperr.CodeInternal)
	})
}

func TestVoteService_SuccessRate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newTestVoteService(db)
	author := createUser(t, db, models.RoleUser)
	cat := createCatalog(t, db)
	listing := createPendingListing(t, db, author, cat)

	rate, err := svc.SuccessRate(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	voters := []bool{true, true, false}
	for _, value := range voters {
		voter := createUser(t, db, models.RoleUser)
		_, err := svc.Vote(ctx, voter.ID, listing.ID, value)
		require.NoError(t, err)
	}

	rate, err = svc.SuccessRate(listing.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, rate, 1e-9)
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.LessOrEqual(t, rate, 1.0)
}
