package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/cache"
	"github.com/emutrack/emutrack-backend/internal/config"
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/fields"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const statsCacheKey = "listing-stats"

// Fixed auto-approval reasons stamped into processedNotes at submission.
const (
	autoApproveNoteRole  = "Auto-approved: trusted author role"
	autoApproveNoteScore = "Auto-approved: trust score threshold met"
)

// ListingService runs the listing lifecycle: submission, moderation,
// bulk moderation, status override, author edits, and deletion.
type ListingService struct {
	db    *gorm.DB
	trust TrustLedger
	sink  notify.Sink
	stats cache.Store
	cfg   *config.Config
}

func NewListingService(db *gorm.DB, trust TrustLedger, sink notify.Sink, stats cache.Store, cfg *config.Config) *ListingService {
	return &ListingService{db: db, trust: trust, sink: sink, stats: stats, cfg: cfg}
}

// Submit validates and persists a new listing. The initial status is
// computed: trusted-tier authors and authors at or above the trust score
// threshold skip the moderation queue.
func (s *ListingService) Submit(ctx context.Context, authorID uuid.UUID, req *dto.CreateListingRequest) (*models.Listing, error) {
	author, err := requireRole(s.db, authorID, models.RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.checkTargets(req); err != nil {
		return nil, err
	}

	var defs []models.CustomFieldDefinition
	if err := s.db.Where("emulator_id = ?", req.EmulatorID).
		Order("display_order").Find(&defs).Error; err != nil {
		return nil, apperr.Internal("failed to load custom field definitions", err)
	}

	values, err := fields.ValidateSet(defs, req.CustomFieldValues)
	if err != nil {
		return nil, err
	}

	var existing models.Listing
	err = s.db.Where("author_id = ? AND game_id = ? AND device_id = ? AND emulator_id = ?",
		authorID, req.GameID, req.DeviceID, req.EmulatorID).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("you already have a listing for this game, device, and emulator")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to check for duplicate listing", err)
	}

	status, processedNotes, err := s.initialStatus(author)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing := models.Listing{
		ID:            uuid.New(),
		GameID:        req.GameID,
		DeviceID:      req.DeviceID,
		EmulatorID:    req.EmulatorID,
		PerformanceID: req.PerformanceID,
		AuthorID:      authorID,
		Status:        status,
		Notes:         req.Notes,
	}
	if status == models.StatusApproved {
		listing.ProcessedByUserID = &author.ID
		listing.ProcessedAt = &now
		listing.ProcessedNotes = &processedNotes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("you already have a listing for this game, device, and emulator")
			}
			return apperr.Internal("failed to create listing", err)
		}
		for defID, value := range values {
			fieldDefID, err := uuid.Parse(defID)
			if err != nil {
				return apperr.Internal("invalid field definition id", err)
			}
			fv := models.CustomFieldValue{
				ID:                uuid.New(),
				ListingID:         listing.ID,
				FieldDefinitionID: fieldDefID,
				Value:             datatypes.JSON(value),
			}
			if err := tx.Create(&fv).Error; err != nil {
				return apperr.Internal("failed to store custom field value", err)
			}
		}
		return s.trust.Apply(tx, authorID, models.TrustListingCreated, listing.ID.String())
	})
	if err != nil {
		return nil, err
	}

	s.sink.Emit(ctx, notify.Event{
		Type:        notify.EventListingCreated,
		EntityType:  "listing",
		EntityID:    listing.ID.String(),
		TriggeredBy: authorID.String(),
		Payload:     map[string]interface{}{"status": listing.Status},
	})
	s.invalidateStats(ctx)

	return &listing, nil
}

func (s *ListingService) checkTargets(req *dto.CreateListingRequest) error {
	var count int64
	if s.db.Model(&models.Game{}).Where("id = ?", req.GameID).Count(&count); count == 0 {
		return apperr.Validation("unknown game")
	}
	if s.db.Model(&models.Device{}).Where("id = ?", req.DeviceID).Count(&count); count == 0 {
		return apperr.Validation("unknown device")
	}
	if s.db.Model(&models.Emulator{}).Where("id = ?", req.EmulatorID).Count(&count); count == 0 {
		return apperr.Validation("unknown emulator")
	}
	if s.db.Model(&models.PerformanceScale{}).Where("id = ?", req.PerformanceID).Count(&count); count == 0 {
		return apperr.Validation("unknown performance rank")
	}
	return nil
}

func (s *ListingService) initialStatus(author *models.User) (string, string, error) {
	if models.RoleAtLeast(author.Role, models.RoleTrusted) {
		return models.StatusApproved, autoApproveNoteRole, nil
	}
	score, err := s.trust.ScoreFor(s.db, author.ID)
	if err != nil {
		return "", "", apperr.Internal("failed to compute trust score", err)
	}
	if score >= s.cfg.AutoApproveTrustScore {
		return models.StatusApproved, autoApproveNoteScore, nil
	}
	return models.StatusPending, "", nil
}

// Approve transitions a pending listing to APPROVED. If the author has a
// ban in force the listing is force-rejected instead and the call still
// returns an error: the rejection commits, the caller is told approval
// failed. That asymmetry is deliberate.
func (s *ListingService) Approve(ctx context.Context, moderatorID, listingID uuid.UUID) (*models.Listing, error) {
	moderator, err := requireRole(s.db, moderatorID, models.RoleModerator)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if listing.Status != models.StatusPending {
		return nil, apperr.NotFound("listing is not pending")
	}

	now := time.Now()
	ban, err := activeBan(s.db, listing.AuthorID, now)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		if err := s.rejectBanned(ctx, moderator, &listing, ban, now); err != nil {
			return nil, err
		}
		return nil, apperr.BadRequest(
			fmt.Sprintf("author has an active ban (%s); listing was rejected instead", ban.Reason))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listingID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":               models.StatusApproved,
				"processed_by_user_id": moderator.ID,
				"processed_at":         now,
				"processed_notes":      nil,
			})
		if result.Error != nil {
			return apperr.Internal("failed to approve listing", result.Error)
		}
		if result.RowsAffected == 0 {
			// Another moderator got there first.
			return apperr.NotFound("listing is not pending")
		}
		return s.trust.Apply(tx, listing.AuthorID, models.TrustListingApproved, listing.ID.String())
	})
	if err != nil {
		return nil, err
	}

	s.sink.Emit(ctx, notify.Event{
		Type:        notify.EventListingApproved,
		EntityType:  "listing",
		EntityID:    listing.ID.String(),
		TriggeredBy: moderator.ID.String(),
	})
	s.invalidateStats(ctx)

	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.Internal("failed to reload listing", err)
	}
	return &listing, nil
}

// rejectBanned force-rejects a pending listing whose author is banned.
// Runs inside Approve's ban branch; the write commits even though the
// approve call errors.
func (s *ListingService) rejectBanned(ctx context.Context, moderator *models.User, listing *models.Listing, ban *models.UserBan, now time.Time) error {
	note := "Auto-rejected: author is banned: " + ban.Reason
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listing.ID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":               models.StatusRejected,
				"processed_by_user_id": moderator.ID,
				"processed_at":         now,
				"processed_notes":      note,
			})
		if result.Error != nil {
			return apperr.Internal("failed to reject banned author's listing", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("listing is not pending")
		}
		return s.trust.Apply(tx, listing.AuthorID, models.TrustListingRejected, listing.ID.String())
	})
	if err != nil {
		return err
	}

	s.sink.Emit(ctx, notify.Event{
		Type:        notify.EventListingRejected,
		EntityType:  "listing",
		EntityID:    listing.ID.String(),
		TriggeredBy: moderator.ID.String(),
		Payload:     map[string]interface{}{"reason": "author_banned"},
	})
	s.invalidateStats(ctx)
	return nil
}

// Reject transitions a pending listing to REJECTED with moderator notes.
func (s *ListingService) Reject(ctx context.Context, moderatorID, listingID uuid.UUID, notes string) (*models.Listing, error) {
	moderator, err := requireReviewNotes(s.db, moderatorID, notes)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}
	if listing.Status != models.StatusPending {
		return nil, apperr.NotFound("listing is not pending")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listingID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":               models.StatusRejected,
				"processed_by_user_id": moderator.ID,
				"processed_at":         now,
				"processed_notes":      notes,
			})
		if result.Error != nil {
			return apperr.Internal("failed to reject listing", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("listing is not pending")
		}
		return s.trust.Apply(tx, listing.AuthorID, models.TrustListingRejected, listing.ID.String())
	})
	if err != nil {
		return nil, err
	}

	s.sink.Emit(ctx, notify.Event{
		Type:        notify.EventListingRejected,
		EntityType:  "listing",
		EntityID:    listing.ID.String(),
		TriggeredBy: moderator.ID.String(),
	})
	s.invalidateStats(ctx)

	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.Internal("failed to reload listing", err)
	}
	return &listing, nil
}

func requireReviewNotes(db *gorm.DB, moderatorID uuid.UUID, notes string) (*models.User, error) {
	moderator, err := requireRole(db, moderatorID, models.RoleModerator)
	if err != nil {
		return nil, err
	}
	if notes == "" {
		return nil, apperr.Validation("rejection notes are required")
	}
	return moderator, nil
}

// BulkApprove approves every still-pending listing in ids. Listings whose
// author is banned are auto-rejected; ids that are missing or already
// processed are skipped and counted. Status writes happen in one
// transaction; per-item trust actions and notifications run best-effort
// after commit (failures are logged, approvals stand).
func (s *ListingService) BulkApprove(ctx context.Context, moderatorID uuid.UUID, ids []uuid.UUID) (*dto.BulkResult, error) {
	moderator, err := requireRole(s.db, moderatorID, models.RoleModerator)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("no listing ids supplied")
	}

	now := time.Now()
	var approved, autoRejected []models.Listing

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var pending []models.Listing
		if err := tx.Where("id IN ? AND status = ?", ids, models.StatusPending).
			Find(&pending).Error; err != nil {
			return apperr.Internal("failed to load pending listings", err)
		}
		if len(pending) == 0 {
			return apperr.NotFound("no pending listings in selection")
		}

		bans, err := activeBansFor(tx, authorIDs(pending), now)
		if err != nil {
			return err
		}

		var approveIDs []uuid.UUID
		for _, l := range pending {
			if ban, banned := bans[l.AuthorID]; banned {
				note := "Auto-rejected: author is banned: " + ban.Reason
				result := tx.Model(&models.Listing{}).
					Where("id = ? AND status = ?", l.ID, models.StatusPending).
					Updates(map[string]interface{}{
						"status":               models.StatusRejected,
						"processed_by_user_id": moderator.ID,
						"processed_at":         now,
						"processed_notes":      note,
					})
				if result.Error != nil {
					return apperr.Internal("failed to auto-reject listing", result.Error)
				}
				autoRejected = append(autoRejected, l)
			} else {
				approveIDs = append(approveIDs, l.ID)
				approved = append(approved, l)
			}
		}

		if len(approveIDs) > 0 {
			result := tx.Model(&models.Listing{}).
				Where("id IN ? AND status = ?", approveIDs, models.StatusPending).
				Updates(map[string]interface{}{
					"status":               models.StatusApproved,
					"processed_by_user_id": moderator.ID,
					"processed_at":         now,
					"processed_notes":      nil,
				})
			if result.Error != nil {
				return apperr.Internal("failed to approve listings", result.Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, l := range approved {
		s.applySideEffects(ctx, moderator.ID, l, models.TrustListingApproved, notify.EventListingApproved)
	}
	for _, l := range autoRejected {
		s.applySideEffects(ctx, moderator.ID, l, models.TrustListingRejected, notify.EventListingRejected)
	}
	s.invalidateStats(ctx)

	result := &dto.BulkResult{
		ProcessedCount:    len(approved),
		AutoRejectedCount: len(autoRejected),
		SkippedCount:      len(ids) - len(approved) - len(autoRejected),
		BannedEncountered: len(autoRejected) > 0,
	}
	result.Message = fmt.Sprintf("%d approved, %d auto-rejected (banned author), %d skipped",
		result.ProcessedCount, result.AutoRejectedCount, result.SkippedCount)
	return result, nil
}

// BulkReject rejects every still-pending listing in ids with the same notes.
func (s *ListingService) BulkReject(ctx context.Context, moderatorID uuid.UUID, ids []uuid.UUID, notes string) (*dto.BulkResult, error) {
	moderator, err := requireReviewNotes(s.db, moderatorID, notes)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("no listing ids supplied")
	}

	now := time.Now()
	var rejected []models.Listing

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var pending []models.Listing
		if err := tx.Where("id IN ? AND status = ?", ids, models.StatusPending).
			Find(&pending).Error; err != nil {
			return apperr.Internal("failed to load pending listings", err)
		}
		if len(pending) == 0 {
			return apperr.NotFound("no pending listings in selection")
		}

		pendingIDs := make([]uuid.UUID, len(pending))
		for i, l := range pending {
			pendingIDs[i] = l.ID
		}
		result := tx.Model(&models.Listing{}).
			Where("id IN ? AND status = ?", pendingIDs, models.StatusPending).
			Updates(map[string]interface{}{
				"status":               models.StatusRejected,
				"processed_by_user_id": moderator.ID,
				"processed_at":         now,
				"processed_notes":      notes,
			})
		if result.Error != nil {
			return apperr.Internal("failed to reject listings", result.Error)
		}
		rejected = pending
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, l := range rejected {
		s.applySideEffects(ctx, moderator.ID, l, models.TrustListingRejected, notify.EventListingRejected)
	}
	s.invalidateStats(ctx)

	result := &dto.BulkResult{
		ProcessedCount: len(rejected),
		SkippedCount:   len(ids) - len(rejected),
	}
	result.Message = fmt.Sprintf("%d rejected, %d skipped", result.ProcessedCount, result.SkippedCount)
	return result, nil
}

// applySideEffects runs the post-commit trust action and notification for
// one bulk item. Failures are logged and do not unwind the batch.
func (s *ListingService) applySideEffects(ctx context.Context, moderatorID uuid.UUID, listing models.Listing, trustAction, eventType string) {
	if err := s.trust.Apply(s.db, listing.AuthorID, trustAction, listing.ID.String()); err != nil {
		slog.Error("bulk trust action failed", "listing_id", listing.ID, "action", trustAction, "error", err)
	}
	s.sink.Emit(ctx, notify.Event{
		Type:        eventType,
		EntityType:  "listing",
		EntityID:    listing.ID.String(),
		TriggeredBy: moderatorID.String(),
	})
}

func authorIDs(listings []models.Listing) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(listings))
	out := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.AuthorID]; !ok {
			seen[l.AuthorID] = struct{}{}
			out = append(out, l.AuthorID)
		}
	}
	return out
}

func activeBansFor(db *gorm.DB, userIDs []uuid.UUID, now time.Time) (map[uuid.UUID]*models.UserBan, error) {
	var bans []models.UserBan
	err := db.Where("user_id IN ? AND is_active = ?", userIDs, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&bans).Error
	if err != nil {
		return nil, apperr.Internal("failed to load author bans", err)
	}
	out := make(map[uuid.UUID]*models.UserBan, len(bans))
	for i := range bans {
		if _, ok := out[bans[i].UserID]; !ok {
			out[bans[i].UserID] = &bans[i]
		}
	}
	return out, nil
}

// OverrideStatus force-sets a listing's status regardless of its current
// state. Super-admin correction path; always re-stamps processing metadata,
// keeps prior notes when none are supplied.
func (s *ListingService) OverrideStatus(ctx context.Context, adminID, listingID uuid.UUID, newStatus string, notes *string) (*models.Listing, error) {
	admin, err := requireRole(s.db, adminID, models.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	if !models.ValidStatus(newStatus) {
		return nil, apperr.Validationf("invalid status %q", newStatus)
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":               newStatus,
		"processed_by_user_id": admin.ID,
		"processed_at":         now,
	}
	if notes != nil {
		updates["processed_notes"] = *notes
	}

	if err := s.db.Model(&listing).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to override listing status", err)
	}

	s.invalidateStats(ctx)

	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.Internal("failed to reload listing", err)
	}
	return &listing, nil
}

// CanEdit computes the author's edit eligibility. Advisory: Update re-runs
// these checks at mutation time because the window keeps moving between
// check and use.
func (s *ListingService) CanEdit(userID, listingID uuid.UUID) (*dto.EditEligibility, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	if listing.AuthorID != userID {
		return &dto.EditEligibility{Reason: "not the listing author"}, nil
	}
	if listing.Status != models.StatusApproved {
		return &dto.EditEligibility{Reason: "listing is not approved"}, nil
	}
	if listing.ProcessedAt == nil {
		return &dto.EditEligibility{Reason: "listing has no processing timestamp"}, nil
	}

	remaining := s.cfg.EditWindow - time.Since(*listing.ProcessedAt)
	if remaining <= 0 {
		return &dto.EditEligibility{Reason: "edit window expired"}, nil
	}
	return &dto.EditEligibility{
		CanEdit:          true,
		RemainingSeconds: int64(remaining.Seconds()),
	}, nil
}

// Update changes a listing's notes within the post-approval edit window.
// Only notes are mutable through this path.
func (s *ListingService) Update(ctx context.Context, userID, listingID uuid.UUID, notes string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	if listing.AuthorID != userID {
		return nil, apperr.Forbidden("only the listing author may edit it")
	}
	if listing.Status != models.StatusApproved || listing.ProcessedAt == nil {
		return nil, apperr.BadRequest("listing is not editable")
	}
	if time.Since(*listing.ProcessedAt) > s.cfg.EditWindow {
		return nil, apperr.BadRequest("edit time expired")
	}

	if err := s.db.Model(&listing).Update("notes", notes).Error; err != nil {
		return nil, apperr.Internal("failed to update listing", err)
	}
	listing.Notes = notes
	return &listing, nil
}

// Delete removes a listing and its dependent rows. Super-admin only, hard
// delete, no tombstone. The trust ledger keeps its entries.
func (s *ListingService) Delete(ctx context.Context, adminID, listingID uuid.UUID) error {
	if _, err := requireRole(s.db, adminID, models.RoleSuperAdmin); err != nil {
		return err
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		return apperr.NotFound("listing not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).Delete(&models.Vote{}).Error; err != nil {
			return apperr.Internal("failed to delete listing votes", err)
		}
		if err := tx.Where("listing_id = ?", listingID).Delete(&models.CustomFieldValue{}).Error; err != nil {
			return apperr.Internal("failed to delete listing field values", err)
		}
		if err := tx.Delete(&listing).Error; err != nil {
			return apperr.Internal("failed to delete listing", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateStats(ctx)
	return nil
}

// Get returns one listing with its live vote aggregate.
func (s *ListingService) Get(listingID uuid.UUID) (*dto.ListingWithVotes, error) {
	var listing models.Listing
	err := s.db.Preload("CustomFieldValues").Preload("CustomFieldValues.FieldDefinition").
		First(&listing, "id = ?", listingID).Error
	if err != nil {
		return nil, apperr.NotFound("listing not found")
	}

	agg, err := voteAggregates(s.db, []uuid.UUID{listingID})
	if err != nil {
		return nil, err
	}
	out := dto.ListingWithVotes{Listing: listing}
	if a, ok := agg[listingID]; ok {
		out.UpvoteCount = a.Upvotes
		out.DownvoteCount = a.Total - a.Upvotes
		out.SuccessRate = successRate(a.Upvotes, a.Total)
	}
	return &out, nil
}

// List returns a filtered page of listings. Sorting by success rate loads
// the whole filtered set and sorts in memory; vote counts are mutable
// per-row, so there is no database-computed order for that mode.
func (s *ListingService) List(filter dto.ListingFilter) (*dto.ListingPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.db.Model(&models.Listing{})
	if filter.GameID != nil {
		query = query.Where("game_id = ?", *filter.GameID)
	}
	if filter.DeviceID != nil {
		query = query.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.EmulatorID != nil {
		query = query.Where("emulator_id = ?", *filter.EmulatorID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count listings", err)
	}

	var listings []models.Listing
	if filter.SortBy == "success_rate" {
		// Full scan for this sort mode: load, rate, sort, paginate.
		if err := query.Find(&listings).Error; err != nil {
			return nil, apperr.Internal("failed to load listings", err)
		}
		withVotes, err := s.attachVotes(listings)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(withVotes, func(i, j int) bool {
			return withVotes[i].SuccessRate > withVotes[j].SuccessRate
		})
		start := (page - 1) * size
		if start > len(withVotes) {
			start = len(withVotes)
		}
		end := start + size
		if end > len(withVotes) {
			end = len(withVotes)
		}
		return &dto.ListingPage{Listings: withVotes[start:end], Total: total, Page: page, PageSize: size}, nil
	}

	err := query.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&listings).Error
	if err != nil {
		return nil, apperr.Internal("failed to load listings", err)
	}
	withVotes, err := s.attachVotes(listings)
	if err != nil {
		return nil, err
	}
	return &dto.ListingPage{Listings: withVotes, Total: total, Page: page, PageSize: size}, nil
}

func (s *ListingService) attachVotes(listings []models.Listing) ([]dto.ListingWithVotes, error) {
	fids := make([]uuid.UUID, len(listings))
	for i, l := range listings {
		fids[i] = l.ID
	}
	agg, err := voteAggregates(s.db, fids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ListingWithVotes, len(listings))
	for i, l := range listings {
		out[i] = dto.ListingWithVotes{Listing: l}
		if a, ok := agg[l.ID]; ok {
			out[i].UpvoteCount = a.Upvotes
			out[i].DownvoteCount = a.Total - a.Upvotes
			out[i].SuccessRate = successRate(a.Upvotes, a.Total)
		}
	}
	return out, nil
}

// Stats returns listing counts by status, cached under a single key with a
// short TTL and invalidated on every status-changing mutation.
func (s *ListingService) Stats(ctx context.Context) (*dto.ListingStats, error) {
	if data, ok, err := s.stats.Get(ctx, statsCacheKey); err == nil && ok {
		var cached dto.ListingStats
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	var rows []struct {
		Status string
		N      int64
	}
	err := s.db.Model(&models.Listing{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to count listings by status", err)
	}

	var stats dto.ListingStats
	for _, r := range rows {
		switch r.Status {
		case models.StatusPending:
			stats.Pending = r.N
		case models.StatusApproved:
			stats.Approved = r.N
		case models.StatusRejected:
			stats.Rejected = r.N
		}
		stats.Total += r.N
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := s.stats.Set(ctx, statsCacheKey, data, s.cfg.StatsCacheTTL); err != nil {
			slog.Warn("stats cache set failed", "error", err)
		}
	}
	return &stats, nil
}

func (s *ListingService) invalidateStats(ctx context.Context) {
	if err := s.stats.Delete(ctx, statsCacheKey); err != nil {
		slog.Warn("stats cache invalidation failed", "error", err)
	}
}
