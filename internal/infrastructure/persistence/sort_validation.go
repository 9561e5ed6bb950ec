package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// EventSortFields contains allowed sort fields for experience events
var EventSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"title":              true,
	"start_at":           true,
	"capacity":           true,
	"remaining_capacity": true,
	"adult_price":        true,
}

// ReservationSortFields contains allowed sort fields for reservations
var ReservationSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"event_start": true,
	"status":      true,
	"total_price": true,
}

// ParticipantSortFields contains allowed sort fields for reservation participants
var ParticipantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"category":   true,
	"joined_at":  true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"channel":       true,
	"status":        true,
	"charge_amount": true,
	"paid_at":       true,
}

// VoucherSortFields contains allowed sort fields for gift vouchers
var VoucherSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"balance":    true,
	"expires_at": true,
}
