package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"picvault/internal/audit"
	"picvault/internal/domain"
	"picvault/internal/errcode"
	"picvault/internal/repository"
	"picvault/internal/storage"
)

const (
	uploadTimeout = 30 * time.Second
	deleteTimeout = 10 * time.Second
)

// UploadInput carries one image upload. FileData is base64, with or without
// a data URI prefix.
type UploadInput struct {
	FileName string
	FileData string
	FileType string
	Remark   string
}

// ImageQuery selects and pages an image listing.
type ImageQuery struct {
	FileNameLike string
	UploaderID   *int64
	Status       *int
	PageNum      int
	PageSize     int
}

// ImagePatch lists the editable image fields. Nil means unchanged.
type ImagePatch struct {
	ID       int64
	FileName *string
	Remark   *string
	Status   *int
}

// BatchResult summarizes a bulk delete.
type BatchResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ImageService manages uploaded images and their object-storage blobs.
type ImageService interface {
	Upload(ctx context.Context, actor *domain.User, in UploadInput, ip string) (*domain.Image, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Image, error)
	List(ctx context.Context, actor *domain.User, q ImageQuery) ([]domain.Image, domain.Page, error)
	Update(ctx context.Context, actor *domain.User, patch ImagePatch) (*domain.Image, error)
	Delete(ctx context.Context, actor *domain.User, id int64, permanent bool, ip string) error
	BatchDelete(ctx context.Context, actor *domain.User, ids []int64, permanent bool, ip string) (BatchResult, error)
}

type imageService struct {
	images   repository.ImageRepository
	store    storage.Service
	recorder *audit.Recorder
	logger   *logrus.Logger

	bucket    string
	keyPrefix string
}

func NewImageService(images repository.ImageRepository, store storage.Service, recorder *audit.Recorder, logger *logrus.Logger, bucket, keyPrefix string) ImageService {
	return &imageService{
		images:    images,
		store:     store,
		recorder:  recorder,
		logger:    logger,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *imageService) Upload(ctx context.Context, actor *domain.User, in UploadInput, ip string) (*domain.Image, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	if in.FileName == "" {
		return nil, errcode.ErrInvalidArgument.WithDetail("file name is required")
	}
	data, err := decodeFileData(in.FileData)
	if err != nil {
		return nil, errcode.ErrInvalidArgument.WithDetail("file data is not valid base64")
	}
	if len(data) == 0 {
		return nil, errcode.ErrInvalidArgument.WithDetail("file data is empty")
	}
	if s.store == nil {
		return nil, errcode.ErrImageUpload.WithDetail("object storage is not configured")
	}

	sum := md5.Sum(data)
	img := &domain.Image{
		FileName:   in.FileName,
		FileSize:   int64(len(data)),
		FileType:   in.FileType,
		MD5:        hex.EncodeToString(sum[:]),
		UploaderID: actor.ID,
		Status:     domain.ImageStatusNormal,
		Remark:     in.Remark,
	}

	// Dimensions are best effort; unparseable payloads still upload.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}

	key := s.objectKey(in.FileName)
	uctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	info, err := s.store.Upload(uctx, data, storage.UploadOptions{
		Bucket:      s.bucket,
		Key:         key,
		ContentType: in.FileType,
	})
	if err != nil {
		s.logger.Warnf("upload image %s: %v", in.FileName, err)
		return nil, errcode.ErrImageUpload.WithDetail(err.Error())
	}
	img.Key = info.Key
	img.URL = info.URL
	img.Bucket = s.bucket

	if _, err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}

	s.recorder.ImageUploaded(actor, img, ip)
	return img, nil
}

func (s *imageService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errcode.ErrNotFound
	}
	if !actor.IsAdmin() && img.UploaderID != actor.ID {
		return nil, errcode.ErrForbidden
	}
	return img, nil
}

func (s *imageService) List(ctx context.Context, actor *domain.User, q ImageQuery) ([]domain.Image, domain.Page, error) {
	filter := repository.ImageFilter{
		FileNameLike: q.FileNameLike,
		UploaderID:   q.UploaderID,
		Status:       q.Status,
	}
	// Non-admins only ever see their own uploads.
	if !actor.IsAdmin() {
		filter.UploaderID = &actor.ID
	}
	return s.images.List(ctx, filter, q.PageNum, q.PageSize)
}

func (s *imageService) Update(ctx context.Context, actor *domain.User, patch ImagePatch) (*domain.Image, error) {
	img, err := s.Get(ctx, actor, patch.ID)
	if err != nil {
		return nil, err
	}

	if patch.FileName != nil {
		name := strings.TrimSpace(*patch.FileName)
		if name == "" {
			return nil, errcode.ErrInvalidArgument.WithDetail("file name is required")
		}
		img.FileName = name
	}
	if patch.Remark != nil {
		img.Remark = *patch.Remark
	}
	if patch.Status != nil {
		if !actor.IsAdmin() {
			return nil, errcode.ErrForbidden
		}
		if *patch.Status != domain.ImageStatusDeleted && *patch.Status != domain.ImageStatusNormal {
			return nil, errcode.ErrInvalidArgument.WithDetail("unknown image status")
		}
		img.Status = *patch.Status
	}

	if err := s.images.Update(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// Delete removes an image. A soft delete flips the status flag and keeps the
// stored object; a permanent delete also removes the blob and the row. A blob
// delete failure is logged and does not block removing the record, so a
// retried permanent delete cannot wedge on a missing object.
func (s *imageService) Delete(ctx context.Context, actor *domain.User, id int64, permanent bool, ip string) error {
	img, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if !permanent {
		img.Status = domain.ImageStatusDeleted
		if err := s.images.Update(ctx, img); err != nil {
			return err
		}
		s.recorder.ImageDeleted(actor, id, ip, "soft delete")
		return nil
	}

	if s.store != nil && img.Key != "" {
		dctx, cancel := context.WithTimeout(ctx, deleteTimeout)
		err := s.store.Delete(dctx, img.Bucket, img.Key)
		cancel()
		if err != nil {
			s.logger.Warnf("delete object %s for image %d: %v", img.Key, id, err)
		}
	}

	affected, err := s.images.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errcode.ErrNotFound
	}
	s.recorder.ImageDeleted(actor, id, ip, "permanent delete")
	return nil
}

func (s *imageService) BatchDelete(ctx context.Context, actor *domain.User, ids []int64, permanent bool, ip string) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, errcode.ErrInvalidArgument.WithDetail("no image ids given")
	}
	var res BatchResult
	for _, id := range ids {
		if err := s.Delete(ctx, actor, id, permanent, ip); err != nil {
			s.logger.Warnf("batch delete image %d: %v", id, err)
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

// objectKey builds "<prefix>/<yyyymm>/<uuid><ext>" so listings in the bucket
// group by month and names never collide.
func (s *imageService) objectKey(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	parts := []string{time.Now().UTC().Format("200601"), name}
	if s.keyPrefix != "" {
		parts = append([]string{s.keyPrefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func decodeFileData(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	// Browsers send "data:image/png;base64,...." from canvas/file readers.
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}
