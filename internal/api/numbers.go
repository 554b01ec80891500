package api

import (
	"fmt"
	"time"
)

// GenerateNumberRequest asks for the next number of a document type in a
// given year.
type GenerateNumberRequest struct {
	DocumentTypeCode string `json:"document_type_code"`
	Year             int    `json:"year"`
}

// GeneratedNumber is the result of a number generation.
type GeneratedNumber struct {
	Number           int    `json:"number"`
	DocumentTypeCode string `json:"document_type_code"`
	DocumentTypeName string `json:"document_type_name"`
	Year             int    `json:"year"`
	Formatted        string `json:"formatted"`
}

// Sequence is the current counter state for one (document type, year) pair.
type Sequence struct {
	DocumentTypeCode string    `json:"document_type_code"`
	Year             int       `json:"year"`
	CurrentNumber    int       `json:"current_number"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SequencesListResponse is the list envelope for sequences.
type SequencesListResponse struct {
	Items []Sequence `json:"items"`
	Total int        `json:"total"`
}

// CorrectionRequest asks for a manual counter adjustment.
type CorrectionRequest struct {
	DocumentTypeCode string `json:"document_type_code"`
	Year             int    `json:"year"`
	NewNumber        int    `json:"new_number"`
	Notes            string `json:"notes"`
}

// CorrectionResponse reports the applied adjustment.
type CorrectionResponse struct {
	PreviousNumber   int    `json:"previous_number"`
	NewNumber        int    `json:"new_number"`
	DocumentTypeCode string `json:"document_type_code"`
	Year             int    `json:"year"`
	Notes            string `json:"notes"`
}

// GenerateNumber allocates the next number for a document type and year.
func (c *Client) GenerateNumber(documentTypeCode string, year int) (*GeneratedNumber, error) {
	var resp GeneratedNumber
	req := GenerateNumberRequest{DocumentTypeCode: documentTypeCode, Year: year}
	if err := c.Post("/numbers/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentNumber returns the counter state without consuming a number.
func (c *Client) CurrentNumber(documentTypeCode string, year int) (*Sequence, error) {
	var resp Sequence
	path := fmt.Sprintf("/numbers/current?document_type_code=%s&year=%d", documentTypeCode, year)
	if err := c.Get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSequences returns every known counter.
func (c *Client) ListSequences() (*SequencesListResponse, error) {
	var resp SequencesListResponse
	if err := c.Get("/numbers/sequences", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CorrectNumber adjusts a counter to a new value. Admin only.
func (c *Client) CorrectNumber(req CorrectionRequest) (*CorrectionResponse, error) {
	var resp CorrectionResponse
	if err := c.Post("/numbers/correct", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
