// Package services defines the business logic for chat sessions, the menu and
// order intake. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Chat-related errors.
var (
	// ErrSessionNotFound indicates that the requested session does not exist
	// or has been evicted.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyPrompt is returned when a chat message is empty after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a chat message exceeds the maximum
	// configured length limit.
	ErrTooLong = errors.New("prompt too long")

	// ErrSessionBusy is returned when a message arrives while the session is
	// still awaiting the reply to a previous one.
	ErrSessionBusy = errors.New("session is awaiting a reply")
)

// Menu and order errors.
var (
	// ErrCategoryNotFound indicates that the category is not on the menu.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnknownItem is returned when an order or price lookup names a
	// category/item pair that is not in the catalog.
	ErrUnknownItem = errors.New("item not on the menu")

	// ErrInvalidOccasion is returned when the occasion is not one of the
	// offered choices.
	ErrInvalidOccasion = errors.New("occasion must be one of Birthday, Anniversary, Baby Shower, Other")

	// ErrInvalidDate is returned when the delivery date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("delivery date must be YYYY-MM-DD")
)
