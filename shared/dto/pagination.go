package dto

// Pagination is the projection metadata returned by every list endpoint.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// NewPagination derives the pagination block from the query params and the
// total row count of the underlying projection.
func NewPagination(params QueryParams, total int) Pagination {
	page := params.Page
	if page <= 0 {
		page = 1
	}

	limit := params.Limit

	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: limit > 0 && page*limit < total,
	}
}
