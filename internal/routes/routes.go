package routes

import (
	"time"

	"github.com/emutrack/emutrack-backend/internal/config"
	"github.com/emutrack/emutrack-backend/internal/handlers"
	"github.com/emutrack/emutrack-backend/internal/middleware"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	listingHandler *handlers.ListingHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Listings — public reads
	api.Get("/listings", listingHandler.List)
	api.Get("/listings/stats", listingHandler.Stats)
	api.Get("/listings/:id", listingHandler.Get)

	// Listings — authenticated writes
	api.Post("/listings", middleware.JWTProtected(cfg), listingHandler.Create)
	api.Post("/listings/:id/vote", middleware.JWTProtected(cfg), listingHandler.Vote)
	api.Get("/listings/:id/can-edit", middleware.JWTProtected(cfg), listingHandler.CanEdit)
	api.Patch("/listings/:id", middleware.JWTProtected(cfg), listingHandler.Update)

	// Moderation queue (moderator tier and up)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.RoleRequired(db, models.RoleModerator))
	admin.Get("/listings/pending", adminHandler.PendingListings)
	admin.Post("/listings/:id/approve", adminHandler.Approve)
	admin.Post("/listings/:id/reject", adminHandler.Reject)
	admin.Post("/listings/bulk-approve", adminHandler.BulkApprove)
	admin.Post("/listings/bulk-reject", adminHandler.BulkReject)
	admin.Post("/users/:id/ban", adminHandler.BanUser)
	admin.Delete("/bans/:id", adminHandler.LiftBan)
	admin.Get("/bans", adminHandler.ListBans)

	// Super-admin corrections. Role is re-checked inside the service too.
	super := api.Group("/admin", middleware.JWTProtected(cfg), middleware.RoleRequired(db, models.RoleSuperAdmin))
	super.Put("/listings/:id/status", adminHandler.OverrideStatus)
	super.Delete("/listings/:id", adminHandler.Delete)
}
