package postgres

// PagedData is returned from the Paged methods.
// It holds one page of notification or subscription records
// alongside pagination metadata, shaped for index responses.
type PagedData struct {
	Items      any   `json:"items"`
	Page       int64 `json:"page"`
	PerPage    int64 `json:"perPage"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}
