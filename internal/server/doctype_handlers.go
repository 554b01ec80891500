package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/controle-pgm/controle/internal/models"
)

// CreateDocumentTypeRequest represents a request to register a document type.
type CreateDocumentTypeRequest struct {
	Code string `json:"code" binding:"required,uppercase,alphanum,min=2,max=10"`
	Name string `json:"name" binding:"required"`
}

// UpdateDocumentTypeRequest carries the patchable document type fields.
type UpdateDocumentTypeRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func (s *Server) listDocumentTypes(c *gin.Context) {
	var types []models.DocumentType
	if err := s.db.Order("code").Find(&types).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list document types")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": types, "total": len(types)})
}

func (s *Server) getDocumentType(c *gin.Context) {
	var dt models.DocumentType
	if err := s.db.First(&dt, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "message": "document type not found"})
		return
	}
	c.JSON(http.StatusOK, dt)
}

func (s *Server) createDocumentType(c *gin.Context) {
	var req CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dt := models.DocumentType{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}
	if err := s.db.Create(&dt).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "code already exists"})
		return
	}

	c.JSON(http.StatusCreated, dt)
}

func (s *Server) updateDocumentType(c *gin.Context) {
	var req UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dt models.DocumentType
	if err := s.db.First(&dt, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "message": "document type not found"})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&dt).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update document type")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, dt)
}
