package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/storage"
	"github.com/GTDGit/toystore_api/internal/utils"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type uploadPart struct {
	name, contentType string
	body              []byte
}

func multipartFiles(t *testing.T, parts ...uploadPart) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"]
}

func TestUpload_StoresImagesSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(storage.NewLocal(dir, "/uploads"), 1<<10)

	files := multipartFiles(t,
		uploadPart{"car.png", "image/png", pngHeader},
		uploadPart{"notes.txt", "text/plain", []byte("hello")},
		uploadPart{"fake.png", "image/png", []byte("just text pretending")},
		uploadPart{"huge.png", "image/png", append(append([]byte{}, pngHeader...), make([]byte, 2<<10)...)},
	)

	res, err := svc.Upload(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.URLs, 1)
	assert.True(t, strings.HasPrefix(res.URLs[0], "/uploads/"))
	assert.True(t, strings.HasSuffix(res.URLs[0], ".png"))
	assert.ElementsMatch(t, []string{"notes.txt", "fake.png", "huge.png"}, res.Skipped)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(res.URLs[0])))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestUpload_NothingStored(t *testing.T) {
	svc := NewUploadService(storage.NewLocal(t.TempDir(), "/uploads"), 1<<10)
	files := multipartFiles(t, uploadPart{"a.txt", "text/plain", []byte("nope")})

	_, err := svc.Upload(context.Background(), files)
	assert.ErrorIs(t, err, utils.ErrNoFilesUploaded)

	_, err = svc.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, utils.ErrNoFilesUploaded)
}
