// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror HTTP status semantics, domain codes
// name the business rule that failed.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "session_busy",
//	  "message": "session is awaiting a reply"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeEmptyPrompt       = "empty_prompt"
	ErrCodePromptTooLong     = "prompt_too_long"
	ErrCodeSessionBusy       = "session_busy"
	ErrCodeSessionNotFound   = "session_not_found"
	ErrCodeCategoryNotFound  = "category_not_found"
	ErrCodeUnknownItem       = "unknown_item"
	ErrCodeInvalidOccasion   = "invalid_occasion"
	ErrCodeInvalidDate       = "invalid_delivery_date"
	ErrCodePersistenceFailed = "persistence_failed"
	ErrCodeExportFailed      = "export_failed"
)
