package handlers

import (
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/middleware"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/emutrack/emutrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler exposes the moderation surface: the pending queue,
// approve/reject (single and bulk), status override, deletion, and bans.
type AdminHandler struct {
	listingService *services.ListingService
	banService     *services.BanService
}

func NewAdminHandler(listingService *services.ListingService, banService *services.BanService) *AdminHandler {
	return &AdminHandler{listingService: listingService, banService: banService}
}

func (h *AdminHandler) PendingListings(c *fiber.Ctx) error {
	filter := dto.ListingFilter{
		Status:   models.StatusPending,
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	page, err := h.listingService.List(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	listing, err := h.listingService.Approve(c.Context(), moderatorID, listingID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	var req dto.RejectListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	listing, err := h.listingService.Reject(c.Context(), moderatorID, listingID, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *AdminHandler) BulkApprove(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BulkApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.listingService.BulkApprove(c.Context(), moderatorID, req.ListingIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (h *AdminHandler) BulkReject(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BulkRejectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.listingService.BulkReject(c.Context(), moderatorID, req.ListingIDs, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (h *AdminHandler) OverrideStatus(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	var req dto.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	listing, err := h.listingService.OverrideStatus(c.Context(), adminID, listingID, req.Status, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}

	if err := h.listingService.Delete(c.Context(), adminID, listingID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	var req dto.BanUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ban, err := h.banService.Ban(c.Context(), moderatorID, userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ban)
}

func (h *AdminHandler) LiftBan(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	banID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid ban ID")
	}

	var req dto.LiftBanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ban, err := h.banService.Lift(c.Context(), moderatorID, banID, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ban)
}

func (h *AdminHandler) ListBans(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	activeOnly := c.QueryBool("active", false)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	bans, total, err := h.banService.List(moderatorID, activeOnly, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"bans": bans, "total": total})
}
