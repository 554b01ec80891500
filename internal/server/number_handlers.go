package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/controle-pgm/controle/internal/models"
)

// GenerateNumberRequest asks for the next number of a document type.
type GenerateNumberRequest struct {
	DocumentTypeCode string `json:"document_type_code" binding:"required"`
	Year             int    `json:"year" binding:"required,min=2000,max=2100"`
}

// CorrectionRequest asks for a manual counter adjustment.
type CorrectionRequest struct {
	DocumentTypeCode string `json:"document_type_code" binding:"required"`
	Year             int    `json:"year" binding:"required,min=2000,max=2100"`
	NewNumber        int    `json:"new_number" binding:"required,min=0"`
	Notes            string `json:"notes" binding:"required"`
}

// formatNumber renders a document number for display, e.g. "OF 0042/2025".
func formatNumber(code string, number, year int) string {
	return fmt.Sprintf("%s %04d/%d", code, number, year)
}

// generateNumber allocates the next number for a (type, year) pair inside a
// transaction and records the allocation in the history.
func (s *Server) generateNumber(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req GenerateNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dt models.DocumentType
	if err := s.db.First(&dt, "code = ?", req.DocumentTypeCode).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "message": "unknown document type code"})
		return
	}
	if !dt.IsActive {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unprocessable", "message": "document type is inactive"})
		return
	}

	var allocated int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var seq models.Sequence
		err := tx.Where("document_type_code = ? AND year = ?", req.DocumentTypeCode, req.Year).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.Sequence{DocumentTypeCode: req.DocumentTypeCode, Year: req.Year}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		allocated = seq.CurrentNumber + 1
		if err := tx.Model(&seq).Update("current_number", allocated).Error; err != nil {
			return err
		}

		entry := models.NumberLog{
			DocumentTypeCode: req.DocumentTypeCode,
			Year:             req.Year,
			Number:           allocated,
			Action:           models.ActionGenerated,
			UserID:           session.UserID,
			UserName:         session.Name,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate number")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"number":             allocated,
		"document_type_code": req.DocumentTypeCode,
		"document_type_name": dt.Name,
		"year":               req.Year,
		"formatted":          formatNumber(req.DocumentTypeCode, allocated, req.Year),
	})
}

// currentNumber reports the counter state without consuming a number.
func (s *Server) currentNumber(c *gin.Context) {
	code := c.Query("document_type_code")
	year, err := strconv.Atoi(c.Query("year"))
	if code == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request", "message": "document_type_code and year are required"})
		return
	}

	var seq models.Sequence
	if err := s.db.Where("document_type_code = ? AND year = ?", code, year).First(&seq).Error; err != nil {
		// No allocation yet: the counter conceptually sits at zero.
		c.JSON(http.StatusOK, gin.H{
			"document_type_code": code,
			"year":               year,
			"current_number":     0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_type_code": seq.DocumentTypeCode,
		"year":               seq.Year,
		"current_number":     seq.CurrentNumber,
	})
}

func (s *Server) listSequences(c *gin.Context) {
	var sequences []models.Sequence
	if err := s.db.Order("document_type_code, year").Find(&sequences).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list sequences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sequences, "total": len(sequences)})
}

// correctNumber adjusts a counter to an explicit value, keeping the previous
// value in the history entry. Admin only.
func (s *Server) correctNumber(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var previous int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var seq models.Sequence
		err := tx.Where("document_type_code = ? AND year = ?", req.DocumentTypeCode, req.Year).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.Sequence{DocumentTypeCode: req.DocumentTypeCode, Year: req.Year}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		previous = seq.CurrentNumber
		if err := tx.Model(&seq).Update("current_number", req.NewNumber).Error; err != nil {
			return err
		}

		notes := req.Notes
		entry := models.NumberLog{
			DocumentTypeCode: req.DocumentTypeCode,
			Year:             req.Year,
			Number:           req.NewNumber,
			Action:           models.ActionCorrected,
			UserID:           session.UserID,
			UserName:         session.Name,
			PreviousNumber:   &previous,
			Notes:            &notes,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to correct number")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"previous_number":    previous,
		"new_number":         req.NewNumber,
		"document_type_code": req.DocumentTypeCode,
		"year":               req.Year,
		"notes":              req.Notes,
	})
}
