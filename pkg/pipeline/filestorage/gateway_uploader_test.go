package filestorage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
	"github.com/atelierlabs/mintline/pkg/pipeline/filestorage"
)

func TestGatewayUploaderUploadFile(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "photo.png", header.Filename)
		assert.Equal(t, []byte("image-bytes"), content)

		json.NewEncoder(w).Encode("https://gw.example/ipfs/Qm111")
	}))
	defer server.Close()

	uploader := filestorage.NewGatewayUploader(server.URL, server.Client())

	address, err := uploader.UploadFile(context.Background(), "photo.png", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/ipfs/Qm111", address)
	assert.Equal(t, int64(1), requests.Load())
}

func TestGatewayUploaderUploadFileRawResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "https://gw.example/ipfs/Qm111\n")
	}))
	defer server.Close()

	uploader := filestorage.NewGatewayUploader(server.URL, server.Client())

	address, err := uploader.UploadFile(context.Background(), "photo.png", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/ipfs/Qm111", address)
}

func TestGatewayUploaderValidatesBeforeNetwork(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	uploader := filestorage.NewGatewayUploader(server.URL, server.Client())

	_, err := uploader.UploadFile(context.Background(), "photo.png", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = uploader.UploadFile(context.Background(), "", []byte("image-bytes"))
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.Equal(t, int64(0), requests.Load())
}

func TestGatewayUploaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "service error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "empty address",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode("")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			uploader := filestorage.NewGatewayUploader(server.URL, server.Client())

			_, err := uploader.UploadFile(context.Background(), "photo.png", []byte("image-bytes"))
			assert.ErrorIs(t, err, errs.ErrUpload)
		})
	}
}

func TestGatewayUploaderUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	uploader := filestorage.NewGatewayUploader(server.URL, nil)

	_, err := uploader.UploadFile(context.Background(), "photo.png", []byte("image-bytes"))
	assert.ErrorIs(t, err, errs.ErrUpload)
}

func TestGatewayUploaderUploadJson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "metadata.json", header.Filename)
		assert.Equal(t, "application/json", header.Header.Get("Content-Type"))

		var document map[string]string
		require.NoError(t, json.NewDecoder(file).Decode(&document))
		assert.Equal(t, map[string]string{
			"name":        "Art #1",
			"description": "test",
			"image":       "ipfs://Qm111",
		}, document)

		json.NewEncoder(w).Encode("https://gw.example/ipfs/Qm222")
	}))
	defer server.Close()

	uploader := filestorage.NewGatewayUploader(server.URL, server.Client())

	address, err := uploader.UploadJson(context.Background(), "metadata.json", map[string]string{
		"name":        "Art #1",
		"description": "test",
		"image":       "ipfs://Qm111",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/ipfs/Qm222", address)
}
