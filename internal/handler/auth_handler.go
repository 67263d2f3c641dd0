package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/middleware"
	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
}

func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// Verify handles GET /api/admin/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	utils.Success(c, 200, "Token is valid", gin.H{
		"user": middleware.GetAdmin(c),
	})
}
