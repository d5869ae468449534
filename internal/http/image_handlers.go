package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"picvault/internal/domain"
	"picvault/internal/repository"
	"picvault/internal/service"
)

type ImageResponse struct {
	ID         int64  `json:"id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	FileType   string `json:"file_type,omitempty"`
	URL        string `json:"url"`
	MD5        string `json:"md5"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	UploaderID int64  `json:"uploader_id"`
	Status     int    `json:"status"`
	Remark     string `json:"remark,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func imageToResponse(img domain.Image) ImageResponse {
	return ImageResponse{
		ID:         img.ID,
		FileName:   img.FileName,
		FileSize:   img.FileSize,
		FileType:   img.FileType,
		URL:        img.URL,
		MD5:        img.MD5,
		Width:      img.Width,
		Height:     img.Height,
		UploaderID: img.UploaderID,
		Status:     img.Status,
		Remark:     img.Remark,
		CreatedAt:  img.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  img.UpdatedAt.Format(time.RFC3339),
	}
}

type uploadImageRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FileData string `json:"file_data" binding:"required"`
	FileType string `json:"file_type"`
	Remark   string `json:"remark"`
}

func (h *Handler) uploadImage(c *gin.Context) {
	var req uploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	img, err := h.images.Upload(c.Request.Context(), loginUser(c), service.UploadInput{
		FileName: req.FileName,
		FileData: req.FileData,
		FileType: req.FileType,
		Remark:   req.Remark,
	}, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, imageToResponse(*img))
}

type imageListResponse struct {
	Items []ImageResponse `json:"items"`
	Page  domain.Page     `json:"page"`
}

func (h *Handler) listImages(c *gin.Context) {
	pageNum, pageSize := pageParams(c)
	q := service.ImageQuery{
		FileNameLike: c.Query("file_name"),
		PageNum:      pageNum,
		PageSize:     pageSize,
	}
	if raw := c.Query("uploader_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "invalid uploader_id")
			return
		}
		q.UploaderID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "invalid status")
			return
		}
		q.Status = &status
	}

	images, page, err := h.images.List(c.Request.Context(), loginUser(c), q)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ImageResponse, len(images))
	for i := range images {
		items[i] = imageToResponse(images[i])
	}
	respondOK(c, imageListResponse{Items: items, Page: page})
}

func (h *Handler) imageDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	img, err := h.images.Get(c.Request.Context(), loginUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, imageToResponse(*img))
}

type updateImageRequest struct {
	ID       int64   `json:"id" binding:"required"`
	FileName *string `json:"file_name"`
	Remark   *string `json:"remark"`
	Status   *int    `json:"status"`
}

func (h *Handler) updateImage(c *gin.Context) {
	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	img, err := h.images.Update(c.Request.Context(), loginUser(c), service.ImagePatch{
		ID:       req.ID,
		FileName: req.FileName,
		Remark:   req.Remark,
		Status:   req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, imageToResponse(*img))
}

func (h *Handler) deleteImage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	permanent, err := strconv.ParseBool(c.DefaultQuery("permanent", "false"))
	if err != nil {
		respondBadRequest(c, "invalid flag permanent")
		return
	}

	if err := h.images.Delete(c.Request.Context(), loginUser(c), id, permanent, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

type batchDeleteRequest struct {
	IDs       []int64 `json:"ids" binding:"required"`
	Permanent bool    `json:"permanent"`
}

func (h *Handler) batchDeleteImages(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	res, err := h.images.BatchDelete(c.Request.Context(), loginUser(c), req.IDs, req.Permanent, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, res)
}

type auditListResponse struct {
	Items []domain.AuditEntry `json:"items"`
	Page  domain.Page         `json:"page"`
}

func (h *Handler) listAudits(c *gin.Context) {
	pageNum, pageSize := pageParams(c)
	filter := repository.AuditFilter{
		EventType: c.Query("event_type"),
		SystemID:  c.Query("system_id"),
	}
	if raw := c.Query("operator_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "invalid operator_id")
			return
		}
		filter.OperatorID = &id
	}

	entries, page, err := h.audits.List(c.Request.Context(), filter, pageNum, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, auditListResponse{Items: entries, Page: page})
}
