package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/pkg/storage"
)

type complianceRepoStub struct {
	uploads   map[string]*models.ComplianceUpload
	order     []string
	createErr error
}

func newComplianceRepo() *complianceRepoStub {
	return &complianceRepoStub{uploads: map[string]*models.ComplianceUpload{}}
}

func (r *complianceRepoStub) Create(ctx context.Context, upload *models.ComplianceUpload) error {
	if r.createErr != nil {
		return r.createErr
	}
	upload.ID = "upload-" + upload.FilePath
	clone := *upload
	r.uploads[upload.ID] = &clone
	r.order = append(r.order, upload.ID)
	return nil
}

func (r *complianceRepoStub) FindByID(ctx context.Context, id string) (*models.ComplianceUpload, error) {
	u, ok := r.uploads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *complianceRepoStub) ListByUser(ctx context.Context, userID string) ([]models.ComplianceUpload, error) {
	var out []models.ComplianceUpload
	for i := len(r.order) - 1; i >= 0; i-- {
		if u := r.uploads[r.order[i]]; u.UserID == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// recordingStore counts writes so tests can assert nothing touched storage.
type recordingStore struct {
	storage.BlobStore
	puts    int
	deletes int
}

func (s *recordingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	s.puts++
	return s.BlobStore.Put(ctx, key, r, size, contentType)
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.deletes++
	return s.BlobStore.Delete(ctx, key)
}

func newComplianceFixture(t *testing.T, maxBytes int64) (*ComplianceService, *complianceRepoStub, *recordingStore, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	blobs := &recordingStore{BlobStore: local}
	repo := newComplianceRepo()
	svc := NewComplianceService(repo, blobs, &auditRecorderStub{}, nil, NewMetricsService(), nil, maxBytes)
	keys := 0
	svc.newKey = func(ext string) string {
		keys++
		return "blob" + string(rune('0'+keys)) + ext
	}
	return svc, repo, blobs, local
}

func uploadReq(name string, body []byte) dto.UploadRequest {
	return dto.UploadRequest{Filename: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func TestClassifyUpload(t *testing.T) {
	cases := map[string]models.UploadKind{
		"kitchen.JPG":  models.UploadKindImage,
		"board.jpeg":   models.UploadKindImage,
		"shelf.png":    models.UploadKindImage,
		"loop.gif":     models.UploadKindImage,
		"walkthru.MP4": models.UploadKindVideo,
		"clip.mov":     models.UploadKindVideo,
		"old.avi":      models.UploadKindVideo,
		"windows.wmv":  models.UploadKindVideo,
	}
	for name, kind := range cases {
		_, got, ok := ClassifyUpload(name)
		assert.True(t, ok, name)
		assert.Equal(t, kind, got, name)
	}
	for _, name := range []string{"malware.exe", "notes.txt", "noext", "image.jpg.exe"} {
		_, _, ok := ClassifyUpload(name)
		assert.False(t, ok, name)
	}
}

func TestUploadRoundTrip(t *testing.T) {
	svc, repo, _, _ := newComplianceFixture(t, 0)
	actor := approvedOperator("op-1")
	payload := []byte("\x89PNG\r\n\x1a\nfake image bytes")
	req := uploadReq("Prep Station.PNG", payload)
	req.Description = "  cutting boards  "

	upload, err := svc.Upload(context.Background(), actor, req, models.SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.UploadKindImage, upload.FileType)
	assert.Equal(t, "image/png", upload.ContentType)
	assert.Equal(t, "Prep Station.PNG", upload.Filename)
	assert.Equal(t, "blob1.png", upload.FilePath)
	assert.Equal(t, int64(len(payload)), upload.SizeBytes)
	require.NotNil(t, upload.Description)
	assert.Equal(t, "cutting boards", *upload.Description)

	meta, body, err := svc.Open(context.Background(), actor, upload.ID)
	require.NoError(t, err)
	defer body.Close()
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "Prep Station.PNG", meta.Filename)

	list, err := svc.List(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, upload.ID, repo.order[0])
}

func TestUploadRejectsDisallowedExtensionBeforeWrite(t *testing.T) {
	svc, repo, blobs, _ := newComplianceFixture(t, 0)

	_, err := svc.Upload(context.Background(), approvedOperator("op-1"), uploadReq("payload.exe", []byte("MZ")), models.SessionMeta{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errorStatus(err))
	assert.Zero(t, blobs.puts)
	assert.Empty(t, repo.uploads)
}

func TestUploadRequiresApproval(t *testing.T) {
	svc, _, blobs, _ := newComplianceFixture(t, 0)

	for _, status := range []models.AccountStatus{models.StatusPending, models.StatusRejected} {
		actor := &models.Account{ID: "op-2", Status: status}
		_, err := svc.Upload(context.Background(), actor, uploadReq("a.jpg", []byte("x")), models.SessionMeta{})
		assert.Equal(t, http.StatusForbidden, errorStatus(err))
		_, err = svc.List(context.Background(), actor)
		assert.Equal(t, http.StatusForbidden, errorStatus(err))
	}
	assert.Zero(t, blobs.puts)
}

func TestUploadRejectsEmptyAndOversizeFiles(t *testing.T) {
	svc, repo, _, local := newComplianceFixture(t, 4)
	actor := approvedOperator("op-1")

	_, err := svc.Upload(context.Background(), actor, uploadReq("a.jpg", nil), models.SessionMeta{})
	assert.Equal(t, http.StatusBadRequest, errorStatus(err))

	_, err = svc.Upload(context.Background(), actor, uploadReq("a.jpg", []byte("12345")), models.SessionMeta{})
	assert.Equal(t, http.StatusBadRequest, errorStatus(err))

	// The declared size lies; the stream is still capped.
	req := dto.UploadRequest{Filename: "b.jpg", Size: -1, Body: bytes.NewReader([]byte("123456789"))}
	_, err = svc.Upload(context.Background(), actor, req, models.SessionMeta{})
	assert.Equal(t, http.StatusBadRequest, errorStatus(err))
	_, statErr := os.Stat(local.Path("blob1.jpg"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	assert.Empty(t, repo.uploads)
}

func TestUploadDeletesBlobWhenMetadataFails(t *testing.T) {
	svc, repo, blobs, local := newComplianceFixture(t, 0)
	repo.createErr = errStoreDown

	_, err := svc.Upload(context.Background(), approvedOperator("op-1"), uploadReq("a.mp4", []byte("video")), models.SessionMeta{})
	assert.Equal(t, http.StatusInternalServerError, errorStatus(err))
	assert.Equal(t, 1, blobs.deletes)
	_, statErr := os.Stat(local.Path("blob1.mp4"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestOpenAccessRules(t *testing.T) {
	svc, _, _, local := newComplianceFixture(t, 0)
	owner := approvedOperator("op-1")

	upload, err := svc.Upload(context.Background(), owner, uploadReq("a.gif", []byte("GIF89a")), models.SessionMeta{})
	require.NoError(t, err)

	_, _, err = svc.Open(context.Background(), approvedOperator("op-2"), upload.ID)
	assert.Equal(t, http.StatusForbidden, errorStatus(err))

	_, body, err := svc.Open(context.Background(), adminAccount(), upload.ID)
	require.NoError(t, err)
	require.NoError(t, body.Close())

	_, _, err = svc.Open(context.Background(), owner, "missing")
	assert.Equal(t, http.StatusNotFound, errorStatus(err))
	assert.Contains(t, err.Error(), "file not found")

	require.NoError(t, local.Delete(context.Background(), upload.FilePath))
	_, _, err = svc.Open(context.Background(), owner, upload.ID)
	assert.Equal(t, http.StatusNotFound, errorStatus(err))
	assert.Contains(t, err.Error(), "file not found on disk")

	_, _, err = svc.Open(context.Background(), nil, upload.ID)
	assert.Equal(t, http.StatusUnauthorized, errorStatus(err))
}
