package models

// ListResponse is the body of list endpoints.
type ListResponse[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    []T  `json:"data"`
}

// ItemResponse is the body of single-record endpoints.
type ItemResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// CreatedID is the data of a successful create.
type CreatedID struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SummaryResponse carries a migration summary. Summary encodes as null
// when no run has completed.
type SummaryResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Summary *MigrationSummary `json:"summary"`
}

// HealthResponse describes the API at its root.
type HealthResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// PortInfo is the content of the port file the API writes once bound.
type PortInfo struct {
	Port      int    `json:"port"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}
