package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// PartialFailureResponse reports a committed first step whose follow-up
// failed. committed is the state the caller must reconcile from.
func PartialFailureResponse(c *fiber.Ctx, message, errorType string, committed interface{}) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":         fiber.StatusInternalServerError,
		"message":        message,
		"ok":             false,
		"partialFailure": true,
		"committed":      committed,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"url":            c.OriginalURL(),
		"type":           errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notFound")
}

// RemovedResponse acknowledges a removal
func RemovedResponse(c *fiber.Ctx, id uint64) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Success",
		"ok":        true,
		"removed":   id,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status         int         `json:"status"`
	Message        string      `json:"message"`
	Ok             bool        `json:"ok"`
	Timestamp      string      `json:"timestamp"`
	URL            string      `json:"url"`
	Type           string      `json:"type,omitempty"`
	PartialFailure bool        `json:"partialFailure,omitempty"`
	Committed      interface{} `json:"committed,omitempty"`
}

// RemovedResponseStruct defines the schema for removal acknowledgements
type RemovedResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Removed   uint64 `json:"removed"`
	Timestamp string `json:"timestamp"`
}
