package handlers

import (
	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/middleware"
	"github.com/emutrack/emutrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListingHandler struct {
	listingService *services.ListingService
	voteService    *services.VoteService
}

func NewListingHandler(listingService *services.ListingService, voteService *services.VoteService) *ListingHandler {
	return &ListingHandler{listingService: listingService, voteService: voteService}
}

// fail renders a service error with its taxonomy code and HTTP status.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    string(apperr.CodeOf(err)),
		Message: apperr.MessageOf(err),
	})
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	listing, err := h.listingService.Submit(c.Context(), userID, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	listing, err := h.listingService.Get(listingID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(listing)
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filter := dto.ListingFilter{
		Status:   c.Query("status"),
		SortBy:   c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if id, err := uuid.Parse(c.Query("game_id")); err == nil {
		filter.GameID = &id
	}
	if id, err := uuid.Parse(c.Query("device_id")); err == nil {
		filter.DeviceID = &id
	}
	if id, err := uuid.Parse(c.Query("emulator_id")); err == nil {
		filter.EmulatorID = &id
	}

	page, err := h.listingService.List(filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(page)
}

func (h *ListingHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.listingService.Stats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (h *ListingHandler) Vote(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.voteService.Vote(c.Context(), userID, listingID, req.Value)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(result)
}

func (h *ListingHandler) CanEdit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	eligibility, err := h.listingService.CanEdit(userID, listingID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(eligibility)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	var req dto.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	listing, err := h.listingService.Update(c.Context(), userID, listingID, req.Notes)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(listing)
}
