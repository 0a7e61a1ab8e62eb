package model

import "encoding/json"

// Pagination is the list metadata returned alongside paged collections.
// HasNextPage and HasPrevPage are always derived, never stored.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (p Pagination) HasNextPage() bool { return p.Page < p.TotalPages }

func (p Pagination) HasPrevPage() bool { return p.Page > 1 }

// NewPagination computes TotalPages from total and limit. A non-positive limit
// yields a single page.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := 1
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

type paginationWire struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func (p Pagination) MarshalJSON() ([]byte, error) {
	return json.Marshal(paginationWire{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage(),
		HasPrevPage: p.HasPrevPage(),
	})
}

// UnmarshalJSON ignores incoming hasNextPage/hasPrevPage; they are recomputed on read.
func (p *Pagination) UnmarshalJSON(b []byte) error {
	var w paginationWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Pagination{Page: w.Page, Limit: w.Limit, Total: w.Total, TotalPages: w.TotalPages}
	return nil
}
