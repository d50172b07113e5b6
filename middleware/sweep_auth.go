// debate-arena-system/middleware/sweep_auth.go
package middleware

import (
	"crypto/subtle"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// SweepSecretMiddleware guards the externally-scheduled sweep endpoint with a
// shared secret header. The external cron (or uptime pinger) sends
// X-Sweep-Secret; everything else gets a 401.
func SweepSecretMiddleware() fiber.Handler {
	secret := os.Getenv("SWEEP_SHARED_SECRET")
	if secret == "" {
		log.Fatal("❌ SWEEP_SHARED_SECRET is not set — /internal/sweep cannot be exposed")
	}

	return func(c *fiber.Ctx) error {
		provided := c.Get("X-Sweep-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			log.Printf("🚫 [SWEEP_AUTH] Bad or missing X-Sweep-Secret from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid sweep secret",
			})
		}
		return c.Next()
	}
}
