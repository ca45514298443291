package services

import (
	"context"
	"errors"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteService maintains per-listing up/down votes and the derived success
// rate. Trust effects land on the listing author, keyed by listing+voter so
// a reversal undoes exactly the entry the vote created.
type VoteService struct {
	db    *gorm.DB
	trust TrustLedger
	sink  notify.Sink
}

func NewVoteService(db *gorm.DB, trust TrustLedger, sink notify.Sink) *VoteService {
	return &VoteService{db: db, trust: trust, sink: sink}
}

func voteTrustAction(value bool) string {
	if value {
		return models.TrustUpvote
	}
	return models.TrustDownvote
}

func voteTrustKey(listingID, voterID uuid.UUID) string {
	return listingID.String() + ":" + voterID.String()
}

// Vote records, flips, or removes a user's vote. Same value twice is a
// toggle-off. Vote row and ledger writes share one transaction; the ledger
// order on a flip is reverse-then-apply so an external score reader never
// sees both effects at once.
func (s *VoteService) Vote(ctx context.Context, userID, listingID uuid.UUID, value bool) (*dto.VoteResult, error) {
	if _, err := requireRole(s.db, userID, models.RoleUser); err != nil {
		return nil, err
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	action := voteTrustAction(value)
	key := voteTrustKey(listingID, userID)
	result := &dto.VoteResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{
				ID:        uuid.New(),
				UserID:    userID,
				ListingID: listingID,
				Value:     value,
			}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Concurrent double-submission; the constraint won, retry.
					return apperr.Conflict("vote already recorded, please retry")
				}
				return apperr.Internal("failed to create vote", err)
			}
			if err := s.trust.Apply(tx, listing.AuthorID, action, key); err != nil {
				return apperr.Internal("failed to record vote trust action", err)
			}
			result.Action = "created"
			result.Vote = &vote
			return nil

		case err != nil:
			return apperr.Internal("failed to load existing vote", err)

		case existing.Value == value:
			// Toggle-off: remove the vote and undo its ledger entry.
			if err := tx.Delete(&existing).Error; err != nil {
				return apperr.Internal("failed to remove vote", err)
			}
			if err := s.trust.Reverse(tx, listing.AuthorID, action, key); err != nil {
				return apperr.Internal("failed to reverse vote trust action", err)
			}
			result.Action = "removed"
			return nil

		default:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return apperr.Internal("failed to change vote", err)
			}
			if err := s.trust.Reverse(tx, listing.AuthorID, voteTrustAction(existing.Value), key); err != nil {
				return apperr.Internal("failed to reverse prior vote trust action", err)
			}
			if err := s.trust.Apply(tx, listing.AuthorID, action, key); err != nil {
				return apperr.Internal("failed to record vote trust action", err)
			}
			existing.Value = value
			result.Action = "changed"
			result.Vote = &existing
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if result.Action == "created" {
		s.sink.Emit(ctx, notify.Event{
			Type:        notify.EventListingVoted,
			EntityType:  "listing",
			EntityID:    listingID.String(),
			TriggeredBy: userID.String(),
			Payload:     map[string]interface{}{"value": value},
		})
	}

	rate, err := s.SuccessRate(listingID)
	if err != nil {
		return nil, err
	}
	result.SuccessRate = rate
	return result, nil
}

// SuccessRate computes upvotes/(upvotes+downvotes) from live counts. Zero
// votes yields 0, never NaN.
func (s *VoteService) SuccessRate(listingID uuid.UUID) (float64, error) {
	agg, err := voteAggregates(s.db, []uuid.UUID{listingID})
	if err != nil {
		return 0, err
	}
	a := agg[listingID]
	return successRate(a.Upvotes, a.Total), nil
}

type voteAggregate struct {
	ListingID uuid.UUID
	Upvotes   int64
	Total     int64
}

// voteAggregates counts votes for a set of listings in one query.
func voteAggregates(db *gorm.DB, listingIDs []uuid.UUID) (map[uuid.UUID]voteAggregate, error) {
	out := make(map[uuid.UUID]voteAggregate, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}

	var rows []voteAggregate
	err := db.Model(&models.Vote{}).
		Select("listing_id, SUM(CASE WHEN value THEN 1 ELSE 0 END) AS upvotes, COUNT(*) AS total").
		Where("listing_id IN ?", listingIDs).
		Group("listing_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to aggregate votes", err)
	}
	for _, r := range rows {
		out[r.ListingID] = r
	}
	return out, nil
}

func successRate(upvotes, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(upvotes) / float64(total)
}
