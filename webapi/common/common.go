// Package common holds the response envelopes and error mapping shared by the
// HTTP handlers.
package common

import (
	"context"
	"errors"

	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

type problem struct {
	kind   error
	status int
	typ    string
	title  string
}

// Ordered by specificity; the first match wins.
var problems = []problem{
	{domain.ErrLocked, fiber.StatusLocked, "urn:accounts:locked", "Account locked"},
	{domain.ErrAccountNotFound, fiber.StatusNotFound, "urn:accounts:not-found", "Account not found"},
	{domain.ErrAccountAlreadyClosed, fiber.StatusConflict, "urn:accounts:already-closed", "Account already closed"},
	{domain.ErrAccountClosed, fiber.StatusGone, "urn:accounts:account-closed", "Account closed"},
	{domain.ErrInsufficientFunds, fiber.StatusUnprocessableEntity, "urn:accounts:insufficient-funds", "Insufficient funds"},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest, "urn:accounts:invalid-amount", "Invalid amount"},
	{domain.ErrSameAccount, fiber.StatusBadRequest, "urn:accounts:same-account", "Same account"},
	{domain.ErrInvalidAccountNumber, fiber.StatusBadRequest, "urn:accounts:invalid-account-number", "Invalid account number"},
	{domain.ErrInvalidKeySet, fiber.StatusBadRequest, "urn:accounts:invalid-key-set", "Invalid key set"},
	{domain.ErrKeyTaken, fiber.StatusServiceUnavailable, "urn:accounts:key-space-exhausted", "No free account number"},
	{domain.ErrStore, fiber.StatusInternalServerError, "urn:accounts:store-error", "Store error"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "urn:accounts:timeout", "Request timed out"},
}

func lookup(err error) (problem, bool) {
	for _, p := range problems {
		if errors.Is(err, p.kind) {
			return p, true
		}
	}
	return problem{}, false
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	if p, ok := lookup(err); ok {
		return p.status
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details
func ErrorResponseJSON(
	c *fiber.Ctx,
	status int,
	title string,
	detail any,
) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	return writeProblem(c, pd)
}

// ProblemDetailsJSON writes err as a problem document. Domain errors get their
// own type URN and status; anything else is reported with the given title.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: ErrorToStatusCode(err),
	}
	if p, ok := lookup(err); ok {
		pd.Type = p.typ
		pd.Title = p.title
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	// Store causes stay in the logs.
	if pd.Status == fiber.StatusInternalServerError {
		pd.Detail = "internal server error"
	}
	return writeProblem(c, pd)
}

func writeProblem(c *fiber.Ctx, pd ProblemDetails) error {
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(pd.Status).JSON(pd)
}

// SuccessResponseJSON wraps data in the standard Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

var validate = validator.New()

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := validate.Struct(input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	return &input, nil
}
