package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/controle-pgm/controle/internal/auth"
	"github.com/controle-pgm/controle/internal/models"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a change-password request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PrincipalResponse is the authenticated principal returned by login and the
// session probe.
type PrincipalResponse struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// login verifies credentials and issues the session cookie.
// 401 on bad credentials, 403 on an inactive account.
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		if err != nil && err != gorm.ErrRecordNotFound {
			s.logger.Error().Err(err).Msg("Failed to look up user")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "account is inactive"})
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.Role, user.MustChangePassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	auth.SetSessionCookie(c, token)
	c.JSON(http.StatusOK, principalResponse(&user))
}

// logout clears the session cookie. Always succeeds with no content.
func (s *Server) logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// me returns the current principal from the validated session.
func (s *Server) me(c *gin.Context) {
	session, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	c.JSON(http.StatusOK, PrincipalResponse{
		UserID:             session.UserID,
		Email:              session.Email,
		Name:               session.Name,
		Role:               session.Role,
		MustChangePassword: session.MustChangePassword,
	})
}

// changePassword replaces the caller's password and reissues the cookie with
// the forced-change flag cleared. 401 on a wrong current password, 400 on a
// policy violation.
func (s *Server) changePassword(c *gin.Context) {
	session, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := auth.CheckPasswordPolicy(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request", "message": err.Error()})
		return
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", session.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash new password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	updates := map[string]any{"password_hash": hash, "must_change_password": false}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.Role, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to reissue session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	auth.SetSessionCookie(c, token)
	c.Status(http.StatusNoContent)
}

func principalResponse(user *models.User) PrincipalResponse {
	return PrincipalResponse{
		UserID:             user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
}
