package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

const createImagesTable = `
CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL,
	file_size INTEGER NOT NULL DEFAULT 0,
	file_type TEXT NOT NULL DEFAULT 'image/jpeg',
	url TEXT NOT NULL DEFAULT '',
	object_key TEXT NOT NULL DEFAULT '',
	bucket TEXT NOT NULL DEFAULT '',
	md5 TEXT NOT NULL DEFAULT '',
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	uploader_id INTEGER NOT NULL DEFAULT 0,
	status INTEGER NOT NULL DEFAULT 1,
	remark TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_images_uploader ON images(uploader_id);
`

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) repository.ImageRepository {
	return &ImageRepository{db: db}
}

var imageTable = table[domain.Image]{
	name: "images",
	columns: "id, file_name, file_size, file_type, url, object_key, bucket, " +
		"md5, width, height, uploader_id, status, remark, created_at, updated_at",
	scan: scanImage,
}

func (r *ImageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createImagesTable); err != nil {
		return fmt.Errorf("create images table: %w", err)
	}
	return nil
}

func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) (int64, error) {
	now := time.Now().UTC()
	img.CreatedAt = now
	img.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO images (file_name, file_size, file_type, url, object_key, bucket, md5, width, height, uploader_id, status, remark, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.FileName, img.FileSize, img.FileType, img.URL, img.Key, img.Bucket,
		img.MD5, img.Width, img.Height, img.UploaderID, img.Status, img.Remark,
		img.CreatedAt, img.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("image last insert id: %w", err)
	}
	img.ID = id
	return id, nil
}

func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return selectOne(ctx, r.db, imageTable, Where("id = ?", id))
}

func (r *ImageRepository) Update(ctx context.Context, img *domain.Image) error {
	img.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE images
SET file_name = ?, file_size = ?, file_type = ?, url = ?, object_key = ?, bucket = ?,
    md5 = ?, width = ?, height = ?, uploader_id = ?, status = ?, remark = ?, updated_at = ?
WHERE id = ?`,
		img.FileName, img.FileSize, img.FileType, img.URL, img.Key, img.Bucket,
		img.MD5, img.Width, img.Height, img.UploaderID, img.Status, img.Remark,
		img.UpdatedAt, img.ID,
	)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update image rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update image %d: %w", img.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return deleteWhere(ctx, r.db, "images", Where("id = ?", id))
}

func (r *ImageRepository) List(ctx context.Context, filter repository.ImageFilter, pageNum, pageSize int) ([]domain.Image, domain.Page, error) {
	var preds []Pred
	if filter.FileNameLike != "" {
		preds = append(preds, Where("file_name LIKE ?", "%"+filter.FileNameLike+"%"))
	}
	if filter.UploaderID != nil {
		preds = append(preds, Where("uploader_id = ?", *filter.UploaderID))
	}
	if filter.Status != nil {
		preds = append(preds, Where("status = ?", *filter.Status))
	}
	return selectPage(ctx, r.db, imageTable, pageNum, pageSize, "id DESC", preds...)
}

func scanImage(row interface{ Scan(dest ...any) error }) (domain.Image, error) {
	var img domain.Image
	if err := row.Scan(
		&img.ID,
		&img.FileName,
		&img.FileSize,
		&img.FileType,
		&img.URL,
		&img.Key,
		&img.Bucket,
		&img.MD5,
		&img.Width,
		&img.Height,
		&img.UploaderID,
		&img.Status,
		&img.Remark,
		&img.CreatedAt,
		&img.UpdatedAt,
	); err != nil {
		return domain.Image{}, err
	}
	return img, nil
}
