package assets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudinaryUploader_Upload(t *testing.T) {
	var gotPreset, gotFile, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotPreset = r.FormValue("upload_preset")
		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		gotFile = string(body)
		assert.NotEmpty(t, header.Filename)
		gotName = r.FormValue("filename_override")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"public_id":"avatars/u1","secure_url":"https://res.example.com/avatars/u1.png"}`)
	}))
	defer srv.Close()

	u, err := NewCloudinaryUploader(srv.URL, "demo", "profile_pics")
	require.NoError(t, err)
	url, err := u.Upload(context.Background(), "me.png", strings.NewReader("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/avatars/u1.png", url)
	assert.Equal(t, "profile_pics", gotPreset)
	assert.Equal(t, "png-bytes", gotFile)
	assert.Equal(t, "me.png", gotName)
}

func TestCloudinaryUploader_FallsBackToPublicID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"public_id":"avatars/u1"}`)
	}))
	defer srv.Close()

	u, err := NewCloudinaryUploader(srv.URL, "demo", "p")
	require.NoError(t, err)
	url, err := u.Upload(context.Background(), "a.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1", url)
}

func TestCloudinaryUploader_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Upload preset not found"}}`)
	}))
	defer srv.Close()

	u, err := NewCloudinaryUploader(srv.URL, "demo", "missing")
	require.NoError(t, err)
	_, err = u.Upload(context.Background(), "a.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")
}
