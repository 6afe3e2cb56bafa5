package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// MediaHandler hands out presigned URLs for exercise demo videos. The video
// bytes never pass through this service.
type MediaHandler struct {
	media service.MediaService
}

func NewMediaHandler(media service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// RequestUpload godoc
// @Summary Get a presigned URL to upload an exercise video
// @Tags Media
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param upload body UploadURLRequest true "Video content type"
// @Success 200 {object} domain.MediaUpload
// @Failure 400 {object} gin.H "Not a video"
// @Router /exercises/{exerciseId}/media/upload-url [post]
func (h *MediaHandler) RequestUpload(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	upload, err := h.media.RequestUpload(c.Request.Context(), userID, c.Param("exerciseId"), req.ContentType)
	if err != nil {
		handleError(c, err, "Failed to create upload URL")
		return
	}
	respond(c, http.StatusOK, upload)
}

// ConfirmUpload godoc
// @Summary Attach an uploaded video to an exercise
// @Tags Media
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param confirm body ConfirmUploadRequest true "Object key from the upload URL"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId}/media [put]
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	ex, err := h.media.ConfirmUpload(c.Request.Context(), userID, c.Param("exerciseId"), req.ObjectKey)
	if err != nil {
		handleError(c, err, "Failed to confirm upload")
		return
	}
	respond(c, http.StatusOK, ex)
}

// DownloadURL godoc
// @Summary Get a presigned URL to watch an exercise video
// @Tags Media
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} domain.MediaLink
// @Failure 404 {object} gin.H "No video attached"
// @Router /exercises/{exerciseId}/media [get]
func (h *MediaHandler) DownloadURL(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	link, err := h.media.DownloadURL(c.Request.Context(), userID, c.Param("exerciseId"))
	if err != nil {
		handleError(c, err, "Failed to create download URL")
		return
	}
	respond(c, http.StatusOK, link)
}
