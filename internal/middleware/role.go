package middleware

import (
	"github.com/emutrack/emutrack-backend/internal/dto"
	"github.com/emutrack/emutrack-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RoleRequired gates a route on the DB role of the authenticated user. The
// role comes from the store, not the token, so demotions take effect on the
// next request rather than at token expiry.
func RoleRequired(db *gorm.DB, minRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "UNAUTHENTICATED", Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "UNAUTHENTICATED", Message: "Unauthorized",
			})
		}

		if !models.RoleAtLeast(user.Role, minRole) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Code: "FORBIDDEN", Message: "Insufficient role",
			})
		}
		return c.Next()
	}
}
