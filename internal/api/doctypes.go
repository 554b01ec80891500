package api

import "time"

// DocumentType represents a document type eligible for numbering.
type DocumentType struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentTypesListResponse is the list envelope for document types.
type DocumentTypesListResponse struct {
	Items []DocumentType `json:"items"`
	Total int            `json:"total"`
}

// CreateDocumentTypeRequest represents a request to register a new document
// type.
type CreateDocumentTypeRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// UpdateDocumentTypeRequest carries the patchable document type fields.
type UpdateDocumentTypeRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListDocumentTypes returns all document types. Admin only.
func (c *Client) ListDocumentTypes() (*DocumentTypesListResponse, error) {
	var resp DocumentTypesListResponse
	if err := c.Get("/document-types", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDocumentType returns one document type by ID. Admin only.
func (c *Client) GetDocumentType(id string) (*DocumentType, error) {
	var dt DocumentType
	if err := c.Get("/document-types/"+id, &dt); err != nil {
		return nil, err
	}
	return &dt, nil
}

// CreateDocumentType registers a new document type. Admin only.
func (c *Client) CreateDocumentType(req CreateDocumentTypeRequest) (*DocumentType, error) {
	var dt DocumentType
	if err := c.Post("/document-types", req, &dt); err != nil {
		return nil, err
	}
	return &dt, nil
}

// UpdateDocumentType patches a document type. Admin only.
func (c *Client) UpdateDocumentType(id string, req UpdateDocumentTypeRequest) (*DocumentType, error) {
	var dt DocumentType
	if err := c.Patch("/document-types/"+id, req, &dt); err != nil {
		return nil, err
	}
	return &dt, nil
}
