package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

func newTestImageRepo(t *testing.T) repository.ImageRepository {
	t.Helper()
	repo := NewImageRepository(newTestDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func seedImage(t *testing.T, repo repository.ImageRepository, name string, uploaderID int64) *domain.Image {
	t.Helper()
	img := &domain.Image{
		FileName:   name,
		FileSize:   1024,
		FileType:   "image/png",
		URL:        "https://cdn.example.com/" + name,
		Key:        "images/202608/" + name,
		Bucket:     "picvault",
		MD5:        "d41d8cd98f00b204e9800998ecf8427e",
		UploaderID: uploaderID,
		Status:     domain.ImageStatusNormal,
	}
	_, err := repo.Create(context.Background(), img)
	require.NoError(t, err)
	return img
}

func TestImageCreateAndGet(t *testing.T) {
	repo := newTestImageRepo(t)
	ctx := context.Background()

	img := seedImage(t, repo, "cat.png", 1)
	require.NotZero(t, img.ID)

	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "cat.png", got.FileName)
	require.Equal(t, "images/202608/cat.png", got.Key)
	require.Equal(t, domain.ImageStatusNormal, got.Status)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestImageUpdate(t *testing.T) {
	repo := newTestImageRepo(t)
	ctx := context.Background()

	img := seedImage(t, repo, "cat.png", 1)
	img.FileName = "kitten.png"
	img.Status = domain.ImageStatusDeleted
	require.NoError(t, repo.Update(ctx, img))

	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	require.Equal(t, "kitten.png", got.FileName)
	require.Equal(t, domain.ImageStatusDeleted, got.Status)

	require.ErrorIs(t, repo.Update(ctx, &domain.Image{ID: 999}), repository.ErrNotFound)
}

func TestImageDelete(t *testing.T) {
	repo := newTestImageRepo(t)
	ctx := context.Background()

	img := seedImage(t, repo, "cat.png", 1)

	affected, err := repo.Delete(ctx, img.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	affected, err = repo.Delete(ctx, img.ID)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestImageListFilters(t *testing.T) {
	repo := newTestImageRepo(t)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		seedImage(t, repo, fmt.Sprintf("cat%d.png", i), 1)
	}
	dog := seedImage(t, repo, "dog.png", 2)
	dog.Status = domain.ImageStatusDeleted
	require.NoError(t, repo.Update(ctx, dog))

	images, page, err := repo.List(ctx, repository.ImageFilter{}, 1, 5)
	require.NoError(t, err)
	require.Len(t, images, 5)
	require.Equal(t, 7, page.TotalSize)
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, "dog.png", images[0].FileName)

	images, page, err = repo.List(ctx, repository.ImageFilter{FileNameLike: "cat"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, images, 6)
	require.Equal(t, 6, page.TotalSize)

	uploader := int64(2)
	images, _, err = repo.List(ctx, repository.ImageFilter{UploaderID: &uploader}, 1, 10)
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.Equal(t, "dog.png", images[0].FileName)

	status := domain.ImageStatusDeleted
	images, _, err = repo.List(ctx, repository.ImageFilter{Status: &status}, 1, 10)
	require.NoError(t, err)
	require.Len(t, images, 1)

	// Combined filters narrow further.
	images, _, err = repo.List(ctx, repository.ImageFilter{FileNameLike: "cat", Status: &status}, 1, 10)
	require.NoError(t, err)
	require.Empty(t, images)
}
