package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-research/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLocal(t *testing.T) (*storage.Local, *storage.Signer) {
	t.Helper()
	signer := storage.NewSigner([]byte("test-secret"), "http://localhost:3000")
	store, err := storage.NewLocal(t.TempDir(), signer)
	assert.NoError(t, err)
	return store, signer
}

func TestLocal_SaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocal(t)

	err := store.Save(ctx, "report-1.pdf", strings.NewReader("%PDF-1.7 payload"))
	assert.NoError(t, err)

	blob, err := store.Open(ctx, "report-1.pdf")
	assert.NoError(t, err)
	content, err := io.ReadAll(blob)
	assert.NoError(t, err)
	blob.Close()
	assert.Equal(t, "%PDF-1.7 payload", string(content))

	assert.NoError(t, store.Remove(ctx, "report-1.pdf"))

	_, err = store.Open(ctx, "report-1.pdf")
	assert.Error(t, err)

	// Removing an absent blob stays idempotent.
	assert.NoError(t, store.Remove(ctx, "report-1.pdf"))
}

func TestSigner_RoundTrip(t *testing.T) {
	signer := storage.NewSigner([]byte("test-secret"), "http://localhost:3000")

	url, err := signer.Sign("abc.pdf", "Q1 Notes.pdf", time.Hour)
	assert.NoError(t, err)
	assert.Contains(t, url, "http://localhost:3000/files/")

	token := strings.TrimPrefix(url, "http://localhost:3000/files/")
	key, fileName, err := signer.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "abc.pdf", key)
	assert.Equal(t, "Q1 Notes.pdf", fileName)
}

func TestSigner_RejectsExpiredAndForeignTokens(t *testing.T) {
	signer := storage.NewSigner([]byte("test-secret"), "http://localhost:3000")

	url, err := signer.Sign("abc.pdf", "notes.pdf", -time.Minute)
	assert.NoError(t, err)
	token := strings.TrimPrefix(url, "http://localhost:3000/files/")

	_, _, err = signer.Verify(token)
	assert.ErrorIs(t, err, storage.ErrInvalidToken)

	other := storage.NewSigner([]byte("other-secret"), "http://localhost:3000")
	otherURL, err := other.Sign("abc.pdf", "notes.pdf", time.Hour)
	assert.NoError(t, err)
	otherToken := strings.TrimPrefix(otherURL, "http://localhost:3000/files/")

	_, _, err = signer.Verify(otherToken)
	assert.ErrorIs(t, err, storage.ErrInvalidToken)
}

func TestHandler_Download(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store, signer := newLocal(t)

	assert.NoError(t, store.Save(ctx, "r1.pdf", strings.NewReader("pdf-bytes")))
	url, err := signer.Sign("r1.pdf", "analysis.pdf", time.Hour)
	assert.NoError(t, err)
	token := strings.TrimPrefix(url, "http://localhost:3000/files/")

	r := gin.New()
	storage.RegisterRoutes(r, storage.NewHandler(store, signer))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/"+token, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `"analysis.pdf"`)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestHandler_DownloadBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, signer := newLocal(t)

	r := gin.New()
	storage.RegisterRoutes(r, storage.NewHandler(store, signer))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/not-a-token", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
