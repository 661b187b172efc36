// Package server provides the HTTP REST API for the auto-apply pipeline.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafael/autoapply/internal/compose"
	"github.com/rafael/autoapply/internal/db"
	"github.com/rafael/autoapply/internal/extract"
	"github.com/rafael/autoapply/internal/jobs"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		unsupported *extract.UnsupportedFormatError
		corrupt     *extract.CorruptDocumentError
		empty       *extract.EmptyDocumentError
		allFailed   *jobs.AllSourcesFailedError
		quota       *db.QuotaExceededError
		noRecipient *compose.NoRecipientFoundError
	)

	switch {
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &corrupt), errors.As(err, &empty):
		return http.StatusUnprocessableEntity
	case errors.As(err, &allFailed):
		return http.StatusBadGateway
	case errors.As(err, &quota):
		return http.StatusTooManyRequests
	case errors.As(err, &noRecipient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the machine-readable code for an error.
func errorCode(err error) string {
	var (
		unsupported *extract.UnsupportedFormatError
		corrupt     *extract.CorruptDocumentError
		empty       *extract.EmptyDocumentError
		allFailed   *jobs.AllSourcesFailedError
		quota       *db.QuotaExceededError
		noRecipient *compose.NoRecipientFoundError
	)

	switch {
	case errors.As(err, &unsupported):
		return "unsupported_format"
	case errors.As(err, &corrupt):
		return "corrupt_document"
	case errors.As(err, &empty):
		return "empty_document"
	case errors.As(err, &allFailed):
		return "all_sources_failed"
	case errors.As(err, &quota):
		return "quota_exceeded"
	case errors.As(err, &noRecipient):
		return "no_recipient_found"
	default:
		return "internal_error"
	}
}

// extractValidationErrors formats validator failures into one message.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		case "min":
			messages = append(messages, fe.Field()+" must have at least "+fe.Param()+" items")
		case "max":
			messages = append(messages, fe.Field()+" must have at most "+fe.Param()+" items")
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}
