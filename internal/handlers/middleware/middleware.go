package middleware

import (
	"server/config"
	"server/internal/database"
	"server/internal/events"
	"server/internal/logger"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type Middleware struct {
	db       database.DB
	eventBus *events.EventBus
	config   config.Config
	log      logger.Logger
}

func New(db database.DB, eventBus *events.EventBus, config config.Config) Middleware {
	return Middleware{
		db:       db,
		eventBus: eventBus,
		config:   config,
		log:      logger.New("middleware"),
	}
}

// AdminOnly guards admin routes with the shared admin key. Full
// authentication lives outside this service; the key is checked against
// its bcrypt hash from config.
func (m Middleware) AdminOnly() fiber.Handler {
	log := m.log.Function("AdminOnly")

	return func(c *fiber.Ctx) error {
		if m.config.AdminKeyHash == "" {
			log.Warn("admin key hash not configured, rejecting admin request")
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"message": "admin access not configured"})
		}

		key := c.Get("X-Admin-Key")
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "admin key required"})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.config.AdminKeyHash), []byte(key)); err != nil {
			log.Warn("rejected admin request with bad key", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid admin key"})
		}

		// Admin identity for issuedBy attribution.
		identity := c.Get("X-Admin-User")
		if identity == "" {
			identity = "admin"
		}
		c.Locals("adminUser", identity)

		return c.Next()
	}
}
