package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"catering/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu      sync.Mutex
	put     map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{put: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, objectURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectURL)
	return nil
}

func (s *fakeStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.put))
	for k := range s.put {
		keys = append(keys, k)
	}
	return keys
}

var _ service.ObjectStore = (*fakeStore)(nil)

func jpegBytes(size int) []byte {
	data := bytes.Repeat([]byte{0x11}, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return data
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func doUpload(r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/menu-items/"+itemID+"/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRouter(h *MenuItemHandler) *gin.Engine {
	r := newTestRouter(ownerID)
	r.POST("/api/menu-items/:id/upload-image", h.UploadImage)
	return r
}

func TestUploadImage_ReplacesPreviousImage(t *testing.T) {
	mock := setupMockDB(t)

	const oldURL = "https://cdn.example.com/menu-items/old.png"
	expectOwnedItem(mock, ownerID, addItem(itemRows(), itemID, parentID, "Samosa", oldURL))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `menu_items` SET `image_url`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := newFakeStore()
	janitor := service.NewImageJanitor(store, zap.NewNop())
	r := uploadRouter(NewMenuItemHandler(nil, janitor, store, UploadLimits{}))

	body, ct := multipartBody(t, "image", "Photo.JPG", "image/jpeg", jpegBytes(2<<20))
	w := doUpload(r, body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Image uploaded successfully", resp["message"])

	data := resp["data"].(map[string]interface{})
	key := data["key"].(string)
	assert.True(t, strings.HasPrefix(key, "menu-items/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "https://cdn.example.com/"+key, data["uploadedImageUrl"])

	item := data["menuItem"].(map[string]interface{})
	assert.Equal(t, itemID, item["id"])
	assert.Equal(t, "Samosa", item["name"])
	assert.Equal(t, data["uploadedImageUrl"], item["imageUrl"])

	assert.Equal(t, []string{key}, store.keys())
	janitor.Wait()
	assert.Equal(t, []string{oldURL}, store.deletedURLs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImage_TooLarge(t *testing.T) {
	mock := setupMockDB(t)
	expectOwnedItem(mock, ownerID, addItem(itemRows(), itemID, parentID, "Samosa", nil))

	store := newFakeStore()
	r := uploadRouter(NewMenuItemHandler(nil, nil, store, UploadLimits{}))

	body, ct := multipartBody(t, "image", "big.jpg", "image/jpeg", jpegBytes(6<<20))
	w := doUpload(r, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image size must be less than 5MB", decode(t, w)["error"])
	assert.Empty(t, store.keys())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImage_RejectsNonImages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"declared text", "text/plain"},
		{"text posing as png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := setupMockDB(t)
			expectOwnedItem(mock, ownerID, addItem(itemRows(), itemID, parentID, "Samosa", nil))

			store := newFakeStore()
			r := uploadRouter(NewMenuItemHandler(nil, nil, store, UploadLimits{}))

			body, ct := multipartBody(t, "image", "notes.png", tt.contentType, []byte("just some plain text, not a picture"))
			w := doUpload(r, body, ct)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Only image files are allowed", decode(t, w)["error"])
			assert.Empty(t, store.keys())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUploadImage_MissingFile(t *testing.T) {
	mock := setupMockDB(t)
	expectOwnedItem(mock, ownerID, addItem(itemRows(), itemID, parentID, "Samosa", nil))

	r := uploadRouter(NewMenuItemHandler(nil, nil, newFakeStore(), UploadLimits{}))

	body, ct := multipartBody(t, "photo", "a.jpg", "image/jpeg", jpegBytes(64))
	w := doUpload(r, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No image file provided", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImage_StorageDisabled(t *testing.T) {
	mock := setupMockDB(t)
	expectOwnedItem(mock, ownerID, addItem(itemRows(), itemID, parentID, "Samosa", nil))

	r := uploadRouter(NewMenuItemHandler(nil, nil, nil, UploadLimits{}))

	body, ct := multipartBody(t, "image", "a.jpg", "image/jpeg", jpegBytes(64))
	w := doUpload(r, body, ct)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Image storage is not configured", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadLimits_WithDefaults(t *testing.T) {
	u := UploadLimits{KeyPrefix: "/dishes/"}.withDefaults()
	assert.Equal(t, int64(5<<20), u.MaxBytes)
	assert.Equal(t, "dishes", u.KeyPrefix)

	u = UploadLimits{MaxBytes: 2 << 20}.withDefaults()
	assert.Equal(t, "menu-items", u.KeyPrefix)
	assert.Equal(t, "Image size must be less than 2MB", u.tooLarge().Message)
}
