package dto

import (
	"encoding/json"
	"time"

	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/google/uuid"
)

type CreateListingRequest struct {
	GameID            uuid.UUID                  `json:"game_id"`
	DeviceID          uuid.UUID                  `json:"device_id"`
	EmulatorID        uuid.UUID                  `json:"emulator_id"`
	PerformanceID     uuid.UUID                  `json:"performance_id"`
	Notes             string                     `json:"notes"`
	CustomFieldValues map[string]json.RawMessage `json:"custom_field_values"`
}

type UpdateListingRequest struct {
	Notes string `json:"notes"`
}

type RejectListingRequest struct {
	Notes string `json:"notes"`
}

type BulkApproveRequest struct {
	ListingIDs []uuid.UUID `json:"listing_ids"`
}

type BulkRejectRequest struct {
	ListingIDs []uuid.UUID `json:"listing_ids"`
	Notes      string      `json:"notes"`
}

// BulkResult summarizes a bulk moderation call. Callers render the
// confirmation from these counts without re-querying.
type BulkResult struct {
	ProcessedCount    int    `json:"processed_count"`
	AutoRejectedCount int    `json:"auto_rejected_count"`
	SkippedCount      int    `json:"skipped_count"`
	BannedEncountered bool   `json:"banned_encountered"`
	Message           string `json:"message"`
}

type OverrideStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// EditEligibility reports whether the author may still edit their listing's
// notes, with remaining-window telemetry. Advisory only: the update mutation
// re-runs the same checks server-side.
type EditEligibility struct {
	CanEdit          bool   `json:"can_edit"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Reason           string `json:"reason,omitempty"`
}

type ListingFilter struct {
	GameID     *uuid.UUID
	DeviceID   *uuid.UUID
	EmulatorID *uuid.UUID
	AuthorID   *uuid.UUID
	Status     string
	SortBy     string
	Page       int
	PageSize   int
}

// ListingWithVotes is a listing plus its live vote aggregate.
type ListingWithVotes struct {
	models.Listing
	UpvoteCount   int64   `json:"upvote_count"`
	DownvoteCount int64   `json:"downvote_count"`
	SuccessRate   float64 `json:"success_rate"`
}

type ListingPage struct {
	Listings []ListingWithVotes `json:"listings"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type ListingStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type VoteRequest struct {
	Value bool `json:"value"`
}

// VoteResult reports what the vote call did: "created", "changed", or
// "removed" (toggle-off), plus the listing's new success rate.
type VoteResult struct {
	Action      string       `json:"action"`
	Vote        *models.Vote `json:"vote,omitempty"`
	SuccessRate float64      `json:"success_rate"`
}

type BanUserRequest struct {
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type LiftBanRequest struct {
	Reason string `json:"reason"`
}
