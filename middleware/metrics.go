// middleware/metrics.go
package middleware

import (
	"time"

	"dream-league-engine/metrics"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records one sample per request, labelled by route pattern so
// entity IDs do not explode label cardinality.
func RequestMetrics(rec *metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		rec.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
