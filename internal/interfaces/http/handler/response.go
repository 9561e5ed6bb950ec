package handler

import "github.com/farmeet/backend/internal/interfaces/http/dto"

// Response shapes referenced from swagger annotations. Handlers build actual
// responses through dto; these exist so generated docs show concrete schemas.

// APIResponse is the standard envelope with a typed data field.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the envelope for operations returning no data.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData carries a bare count.
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}

// SweeperStatusData represents reservation sweeper status data
// @Description Background sweeper status information
type SweeperStatusData struct {
	Enabled bool `json:"enabled"`
	Running bool `json:"running"`
}
