package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/observability"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(requestContextMiddleware(timeout))
}

// requestContextMiddleware carries the request id into the user context and,
// when timeout is positive, bounds the handler with a deadline.
func requestContextMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			ctx = observability.ContextWithRequestID(ctx, id)
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = errorutil.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= http.StatusInternalServerError {
					logger.Error("request failed", zap.Error(domainErr))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// writeError renders not-found as a plain-text message and conflicts as an empty
// object; everything else gets the JSON error envelope.
func writeError(c *fiber.Ctx, domainErr *errorutil.DomainError) error {
	c.Status(domainErr.HTTPStatus)
	switch domainErr.HTTPStatus {
	case http.StatusNotFound:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(domainErr.Message)
	case http.StatusConflict:
		return c.JSON(fiber.Map{})
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.JSON(fiber.Map{"error": body})
}

// toDomainError also maps router errors such as unknown routes, keeping their status.
func toDomainError(err error) *errorutil.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &errorutil.DomainError{
			Code:       codeForStatus(fiberErr.Code),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
			Err:        err,
		}
	}
	return errorutil.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return errorutil.CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errorutil.CodeValidation
	case http.StatusConflict:
		return errorutil.CodeConflict
	}
	if status >= http.StatusInternalServerError {
		return errorutil.CodeInternal
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
