package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"picvault/internal/audit"
	"picvault/internal/domain"
	"picvault/internal/errcode"
	"picvault/internal/repository/sqlite"
	"picvault/internal/storage"
)

type fakeStorage struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, opts storage.UploadOptions) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return storage.ObjectInfo{}, f.uploadErr
	}
	f.uploads[opts.Key] = data
	return storage.ObjectInfo{
		Key:  opts.Key,
		URL:  "https://cdn.example.com/" + opts.Key,
		Size: int64(len(data)),
	}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

func newImageFixture(t *testing.T, store storage.Service) ImageService {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	imageRepo := sqlite.NewImageRepository(db)
	require.NoError(t, imageRepo.Init(ctx))
	auditRepo := sqlite.NewAuditRepository(db)
	require.NoError(t, auditRepo.Init(ctx))

	recorder := audit.NewRecorder(auditRepo, quietLogger())
	return NewImageService(imageRepo, store, recorder, quietLogger(), "picvault", "images")
}

var (
	adminUser  = &domain.User{ID: 1, UserName: "alice", Role: domain.RoleAdmin}
	normalUser = &domain.User{ID: 2, UserName: "bob", Role: domain.RoleDefault}
	otherUser  = &domain.User{ID: 3, UserName: "carol", Role: domain.RoleDefault}
)

func uploadPNG(t *testing.T, svc ImageService, actor *domain.User, name string) *domain.Image {
	t.Helper()
	img, err := svc.Upload(context.Background(), actor, UploadInput{
		FileName: name,
		FileData: base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
		FileType: "image/png",
	}, "127.0.0.1")
	require.NoError(t, err)
	return img
}

func TestUpload(t *testing.T) {
	store := newFakeStorage()
	svc := newImageFixture(t, store)

	img := uploadPNG(t, svc, normalUser, "cat.png")
	require.NotZero(t, img.ID)
	require.Equal(t, int64(2), img.UploaderID)
	require.Equal(t, domain.ImageStatusNormal, img.Status)
	require.Equal(t, int64(len("fake image bytes")), img.FileSize)
	require.NotEmpty(t, img.MD5)
	require.Contains(t, img.Key, "images/")
	require.Contains(t, img.Key, ".png")
	require.Equal(t, "https://cdn.example.com/"+img.Key, img.URL)

	require.Len(t, store.uploads, 1)
	require.Equal(t, []byte("fake image bytes"), store.uploads[img.Key])
}

func TestUploadDataURIPrefix(t *testing.T) {
	store := newFakeStorage()
	svc := newImageFixture(t, store)

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
	img, err := svc.Upload(context.Background(), normalUser, UploadInput{
		FileName: "pic.png",
		FileData: encoded,
	}, "")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), store.uploads[img.Key])
}

func TestUploadValidation(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	_, err := svc.Upload(ctx, normalUser, UploadInput{FileName: "", FileData: "aGk="}, "")
	require.ErrorIs(t, err, errcode.ErrInvalidArgument)

	_, err = svc.Upload(ctx, normalUser, UploadInput{FileName: "x.png", FileData: "%%%not-base64%%%"}, "")
	require.ErrorIs(t, err, errcode.ErrInvalidArgument)

	_, err = svc.Upload(ctx, normalUser, UploadInput{FileName: "x.png", FileData: ""}, "")
	require.ErrorIs(t, err, errcode.ErrInvalidArgument)
}

func TestUploadWithoutStorage(t *testing.T) {
	svc := newImageFixture(t, nil)

	_, err := svc.Upload(context.Background(), normalUser, UploadInput{
		FileName: "x.png",
		FileData: "aGk=",
	}, "")
	require.ErrorIs(t, err, errcode.ErrImageUpload)
}

func TestUploadStorageFailure(t *testing.T) {
	store := newFakeStorage()
	store.uploadErr = errors.New("bucket unreachable")
	svc := newImageFixture(t, store)

	_, err := svc.Upload(context.Background(), normalUser, UploadInput{
		FileName: "x.png",
		FileData: "aGk=",
	}, "")
	require.ErrorIs(t, err, errcode.ErrImageUpload)
}

func TestGetOwnership(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")

	got, err := svc.Get(ctx, normalUser, img.ID)
	require.NoError(t, err)
	require.Equal(t, img.ID, got.ID)

	// Admins see everything; other users see nothing of bob's.
	_, err = svc.Get(ctx, adminUser, img.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherUser, img.ID)
	require.ErrorIs(t, err, errcode.ErrForbidden)

	_, err = svc.Get(ctx, adminUser, 999)
	require.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestListScopedToUploader(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	uploadPNG(t, svc, normalUser, "bob1.png")
	uploadPNG(t, svc, normalUser, "bob2.png")
	uploadPNG(t, svc, otherUser, "carol.png")

	images, page, err := svc.List(ctx, normalUser, ImageQuery{PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, 2, page.TotalSize)

	// A non-admin asking for someone else's uploads still only gets their own.
	images, _, err = svc.List(ctx, normalUser, ImageQuery{UploaderID: &otherUser.ID, PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, images, 2)

	images, page, err = svc.List(ctx, adminUser, ImageQuery{PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, images, 3)
	require.Equal(t, 3, page.TotalSize)

	images, _, err = svc.List(ctx, adminUser, ImageQuery{UploaderID: &otherUser.ID, PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, images, 1)
}

func TestUpdateImage(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")

	name := "kitten.png"
	remark := "cute"
	updated, err := svc.Update(ctx, normalUser, ImagePatch{ID: img.ID, FileName: &name, Remark: &remark})
	require.NoError(t, err)
	require.Equal(t, "kitten.png", updated.FileName)
	require.Equal(t, "cute", updated.Remark)

	// Status changes are admin-only.
	status := domain.ImageStatusDeleted
	_, err = svc.Update(ctx, normalUser, ImagePatch{ID: img.ID, Status: &status})
	require.ErrorIs(t, err, errcode.ErrForbidden)

	updated, err = svc.Update(ctx, adminUser, ImagePatch{ID: img.ID, Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.ImageStatusDeleted, updated.Status)

	bad := 7
	_, err = svc.Update(ctx, adminUser, ImagePatch{ID: img.ID, Status: &bad})
	require.ErrorIs(t, err, errcode.ErrInvalidArgument)
}

func TestSoftDeleteKeepsObject(t *testing.T) {
	store := newFakeStorage()
	svc := newImageFixture(t, store)
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")

	require.NoError(t, svc.Delete(ctx, normalUser, img.ID, false, ""))

	got, err := svc.Get(ctx, normalUser, img.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ImageStatusDeleted, got.Status)
	require.Empty(t, store.deleted)
	require.Len(t, store.uploads, 1)
}

func TestPermanentDeleteRemovesObjectAndRow(t *testing.T) {
	store := newFakeStorage()
	svc := newImageFixture(t, store)
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")

	require.NoError(t, svc.Delete(ctx, normalUser, img.ID, true, ""))
	require.Len(t, store.deleted, 1)
	require.Empty(t, store.uploads)

	_, err := svc.Get(ctx, normalUser, img.ID)
	require.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestPermanentDeleteSurvivesStorageFailure(t *testing.T) {
	store := newFakeStorage()
	svc := newImageFixture(t, store)
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")
	store.deleteErr = errors.New("object gone")

	require.NoError(t, svc.Delete(ctx, normalUser, img.ID, true, ""))

	_, err := svc.Get(ctx, normalUser, img.ID)
	require.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestDeleteOwnership(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	img := uploadPNG(t, svc, normalUser, "cat.png")
	require.ErrorIs(t, svc.Delete(ctx, otherUser, img.ID, false, ""), errcode.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminUser, img.ID, false, ""))
}

func TestBatchDelete(t *testing.T) {
	svc := newImageFixture(t, newFakeStorage())
	ctx := context.Background()

	a := uploadPNG(t, svc, normalUser, "a.png")
	b := uploadPNG(t, svc, normalUser, "b.png")
	foreign := uploadPNG(t, svc, otherUser, "c.png")

	res, err := svc.BatchDelete(ctx, normalUser, []int64{a.ID, b.ID, foreign.ID, 999}, false, "")
	require.NoError(t, err)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, 2, res.Failed)

	_, err = svc.BatchDelete(ctx, normalUser, nil, false, "")
	require.ErrorIs(t, err, errcode.ErrInvalidArgument)
}
