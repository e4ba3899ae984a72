package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorutil.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id, nil
}

// paramString returns a path parameter with percent-escapes decoded.
func paramString(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// parseBody decodes and validates a JSON request body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}
