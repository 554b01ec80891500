package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/controle-pgm/controle/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listHistory returns a filtered, paginated slice of the numbering audit
// trail, newest first.
func (s *Server) listHistory(c *gin.Context) {
	query := s.db.Model(&models.NumberLog{})

	if code := c.Query("document_type_code"); code != "" {
		query = query.Where("document_type_code = ?", code)
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request", "message": "year must be a number"})
			return
		}
		query = query.Where("year = ?", year)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		if action != models.ActionGenerated && action != models.ActionCorrected {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request", "message": "unknown action"})
			return
		}
		query = query.Where("action = ?", action)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var entries []models.NumberLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       entries,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value := c.Query(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
