package api

import (
	"net/url"
	"strconv"
	"time"
)

// NumberLog is one entry of the numbering audit trail.
type NumberLog struct {
	ID               string    `json:"id"`
	DocumentTypeCode string    `json:"document_type_code"`
	Year             int       `json:"year"`
	Number           int       `json:"number"`
	Action           string    `json:"action"`
	UserID           string    `json:"user_id"`
	UserName         string    `json:"user_name"`
	PreviousNumber   *int      `json:"previous_number"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// HistoryFilter narrows a history query. Zero values mean "no filter".
type HistoryFilter struct {
	DocumentTypeCode string
	Year             int
	UserID           string
	Action           string
	Page             int
	PageSize         int
}

// HistoryPage is one page of history entries.
type HistoryPage struct {
	Items      []NumberLog `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// History returns a filtered, paginated slice of the numbering audit trail.
func (c *Client) History(filter HistoryFilter) (*HistoryPage, error) {
	params := url.Values{}
	if filter.DocumentTypeCode != "" {
		params.Set("document_type_code", filter.DocumentTypeCode)
	}
	if filter.Year != 0 {
		params.Set("year", strconv.Itoa(filter.Year))
	}
	if filter.UserID != "" {
		params.Set("user_id", filter.UserID)
	}
	if filter.Action != "" {
		params.Set("action", filter.Action)
	}
	if filter.Page != 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize != 0 {
		params.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	path := "/history"
	if query := params.Encode(); query != "" {
		path += "?" + query
	}

	var page HistoryPage
	if err := c.Get(path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
