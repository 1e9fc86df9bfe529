package middleware

import (
	"errors"
	"regexp"
	"runtime/debug"

	"github.com/edstack/institute-api/utils/apperror"
	"github.com/edstack/institute-api/utils/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorResponse is the JSON envelope every failed request resolves to
type ErrorResponse struct {
	Status  string      `json:"status"` // "fail" for 4xx, "error" for 5xx
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

// Postgres unique_violation
const pgUniqueViolation = "23505"

var duplicateKeyPattern = regexp.MustCompile(`Key \((.*?)\)=`)

// NewErrorHandler builds the terminal Fiber error handler. Every error
// returned by a handler, middleware, or service ends up here; nothing below
// this handler writes its own error response. The checks are ordered: earlier
// rules take precedence over the more generic ones.
func NewErrorHandler(env string) fiber.ErrorHandler {
	includeStack := env != "production"

	return func(c *fiber.Ctx, err error) error {
		res := ErrorResponse{
			Status:  "error",
			Message: "Internal server error",
		}
		if includeStack {
			res.Stack = err.Error() + "\n" + string(debug.Stack())
		}

		// Domain errors carry their own status code
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			res.Status = statusWord(appErr.StatusCode)
			res.Message = appErr.Message
			return c.Status(appErr.StatusCode).JSON(res)
		}

		// Storage-layer failures surfaced by the postgres driver
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgUniqueViolation {
				res.Status = "fail"
				res.Message = "Duplicate entry found"
				res.Errors = extractDuplicateField(pgErr)
				return c.Status(fiber.StatusConflict).JSON(res)
			}
			res.Status = "error"
			res.Message = "Database operation failed"
			res.Errors = nil
			return c.Status(fiber.StatusInternalServerError).JSON(res)
		}

		// Request body validation failures
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			res.Status = "fail"
			res.Message = "Validation failed"
			res.Errors = validation.FormatValidationErrors(validationErrs)
			return c.Status(fiber.StatusBadRequest).JSON(res)
		}

		// Framework-originated errors (unknown route, bad method, body limits)
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			res.Status = statusWord(fiberErr.Code)
			res.Message = fiberErr.Message
			return c.Status(fiberErr.Code).JSON(res)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(res)
	}
}

func statusWord(code int) string {
	if code < 500 {
		return "fail"
	}
	return "error"
}

// extractDuplicateField pulls the offending column out of the constraint
// violation detail, e.g. `Key (institute_code)=(ALU) already exists.`
func extractDuplicateField(pgErr *pgconn.PgError) string {
	matches := duplicateKeyPattern.FindStringSubmatch(pgErr.Detail)
	if len(matches) > 1 && matches[1] != "" {
		return matches[1] + " already exists"
	}
	return "Duplicate entry found"
}
