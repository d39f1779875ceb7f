package images_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/umbra-img/umbra/internal/images"
)

func passthroughAuth(next http.Handler) http.Handler { return next }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := images.NewFileStore(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	handler := images.NewHandler(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		store,
		images.NewProcessor(),
		images.NewRegistry(),
		10<<20,
		passthroughAuth,
	)

	r := chi.NewRouter()
	handler.MountRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func pngUpload(t *testing.T) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func multipartBody(t *testing.T, filename, contentType string, content io.Reader) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func uploadImage(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body, contentType := multipartBody(t, "night.png", "image/png", pngUpload(t))

	resp, err := http.Post(srv.URL+"/enhance", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, true, payload["success"])
	require.Equal(t, "night.png", payload["original_filename"])
	require.Equal(t, "lol_real", payload["model_used"])

	fileID, ok := payload["file_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, fileID)
	require.Equal(t, "/download/"+fileID, payload["download_url"])
	return fileID
}

func TestModelsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/models")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Models []images.Model `json:"models"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload.Models)

	found := false
	for _, m := range payload.Models {
		if m.ID == images.ModelLOLReal {
			found = true
		}
	}
	require.True(t, found)
}

func TestEnhanceAndDownload(t *testing.T) {
	srv := newTestServer(t)
	fileID := uploadImage(t, srv)

	resp, err := http.Get(srv.URL + "/download/" + fileID)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "enhanced_"+fileID)

	// The downloaded payload is a decodable PNG.
	_, err = png.Decode(resp.Body)
	require.NoError(t, err)
}

func TestEnhanceRejectsNonImage(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "notes.txt", "text/plain", bytes.NewReader([]byte("hello")))

	resp, err := http.Post(srv.URL+"/enhance", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnhanceRequiresFileField(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(srv.URL+"/enhance", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnhanceCleansUpAfterCorruptImage(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "broken.png", "image/png", bytes.NewReader([]byte("not an image")))

	resp, err := http.Post(srv.URL+"/enhance", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDownloadUnknownFile(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/download/does-not-exist")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCleanupEndpoint(t *testing.T) {
	srv := newTestServer(t)
	fileID := uploadImage(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/cleanup/"+fileID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The enhanced file is gone afterwards.
	dl, err := http.Get(srv.URL + "/download/" + fileID)
	require.NoError(t, err)
	defer func() { _ = dl.Body.Close() }()
	require.Equal(t, http.StatusNotFound, dl.StatusCode)
}

func TestCleanupIsIdempotent(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/cleanup/"+uuid.NewString(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCleanupRejectsNonUUIDFileID(t *testing.T) {
	srv := newTestServer(t)
	fileID := uploadImage(t, srv)

	// A wildcard in the path must not reach the filesystem.
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/cleanup/*", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The previously uploaded result is still there.
	dl, err := http.Get(srv.URL + "/download/" + fileID)
	require.NoError(t, err)
	defer func() { _ = dl.Body.Close() }()
	require.Equal(t, http.StatusOK, dl.StatusCode)
}

func TestDownloadRejectsNonUUIDFileID(t *testing.T) {
	srv := newTestServer(t)
	uploadImage(t, srv)

	resp, err := http.Get(srv.URL + "/download/*")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
