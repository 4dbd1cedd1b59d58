package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/world"
)

func TestProgressHandler(t *testing.T) {
	st := seededStorage(t)
	doc, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	doc.Graph.Storyline.MainEvents = append(doc.Graph.Storyline.MainEvents,
		world.TimelineEvent{Description: "The bridge burned", UserGenerated: true})
	doc.AddEnding("Story takes diplomatic direction", nil, time.Now().UTC())
	require.NoError(t, st.SaveWorld(context.Background(), doc))

	handler := NewProgressHandler(st, testLogger())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/progress", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report ProgressReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Mira", report.Character)
	assert.Equal(t, 1, report.Progress.UserGeneratedEvents)
	assert.Equal(t, 1, report.Progress.AlternativeEndings)
	assert.Equal(t, 10, report.Progress.StoryComplexity)
	assert.Contains(t, report.Status, "Mira")
}

func TestEndingsHandler(t *testing.T) {
	st := seededStorage(t)
	doc, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	doc.AddEnding("Story takes conflict direction", nil, time.Now().UTC())
	doc.AddEnding("Story takes heroic direction", nil, time.Now().UTC())
	require.NoError(t, st.SaveWorld(context.Background(), doc))

	handler := NewEndingsHandler(st, testLogger())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/endings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var previews []world.EndingPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &previews))
	require.Len(t, previews, 2)
}

func TestProgressHandler_NoWorld(t *testing.T) {
	handler := NewProgressHandler(storage.NewMockStorage(), testLogger())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/progress", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBook(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestBookHandler_UploadAndBuild(t *testing.T) {
	dir := t.TempDir()
	builder := &services.MockGraphBuilder{}
	handler := NewBookHandler(dir, builder, testLogger())

	body, contentType := multipartBook(t, "book", "novel.txt", "Call me Ishmael.")
	req := httptest.NewRequest(http.MethodPost, "/v1/book", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp BookUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "novel.txt", resp.Filename)
	assert.True(t, resp.GraphBuilt)

	stored, err := os.ReadFile(filepath.Join(dir, "novel.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Call me Ishmael.", string(stored))

	require.Len(t, builder.Paths, 1)
	assert.Equal(t, filepath.Join(dir, "novel.txt"), builder.Paths[0])
}

func TestBookHandler_NoBuilderConfigured(t *testing.T) {
	handler := NewBookHandler(t.TempDir(), nil, testLogger())

	body, contentType := multipartBook(t, "book", "novel.txt", "text")
	req := httptest.NewRequest(http.MethodPost, "/v1/book", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp BookUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.GraphBuilt)
	assert.NotEmpty(t, resp.Message)
}

func TestBookHandler_MissingFileField(t *testing.T) {
	handler := NewBookHandler(t.TempDir(), nil, testLogger())

	body, contentType := multipartBook(t, "wrong_field", "novel.txt", "text")
	req := httptest.NewRequest(http.MethodPost, "/v1/book", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookHandler_RejectsNonTextUpload(t *testing.T) {
	dir := t.TempDir()
	handler := NewBookHandler(dir, &services.MockGraphBuilder{}, testLogger())

	body, contentType := multipartBook(t, "book", "novel.pdf", "%PDF-1.7")
	req := httptest.NewRequest(http.MethodPost, "/v1/book", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, err := os.Stat(filepath.Join(dir, "novel.pdf"))
	assert.True(t, os.IsNotExist(err))
}
