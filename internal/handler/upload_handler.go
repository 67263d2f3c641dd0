package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload handles POST /api/admin/upload (multipart field "images")
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Expected a multipart form")
		return
	}

	result, err := h.uploadService.Upload(c.Request.Context(), form.File["images"])
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Files uploaded successfully", result)
}
