package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/mintline/pkg/pipeline"
)

func newFileRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/file", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestApiStateFlow(t *testing.T) {
	controller := newTestController(t)
	router := controller.GetRouter()

	t.Run("GET /state starts idle", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var state map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
		assert.Equal(t, "idle", state["stage"])
		assert.Equal(t, "idle", state["mintStatus"])
	})

	t.Run("POST /file", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newFileRequest(t, "photo.png", []byte("image-bytes")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pipeline.StageFileSelected, controller.State().Stage)
	})

	t.Run("POST /upload", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "https://gw.example/ipfs/Qm111", response["address"])
	})

	t.Run("POST /metadata", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/metadata", strings.NewReader(`{"name":"Art #1","description":"test"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var metadata map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&metadata))
		assert.Equal(t, "ipfs://Qm111", metadata["image"])
	})

	t.Run("POST /metadata/upload", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metadata/upload", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pipeline.StageMetadataUploaded, controller.State().Stage)
	})

	t.Run("POST /mint", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mint", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var tx map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&tx))
		assert.Equal(t, true, tx["confirmed"])
		assert.NotEmpty(t, tx["hash"])

		state := controller.State()
		assert.Equal(t, pipeline.StageMinted, state.Stage)
		assert.Equal(t, pipeline.MintConfirmed, state.MintStatus)
	})

	t.Run("POST /reset", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pipeline.StageIdle, controller.State().Stage)
	})
}

func TestApiErrorMapping(t *testing.T) {
	t.Run("precondition violations map to 400", func(t *testing.T) {
		controller := newTestController(t)
		router := controller.GetRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/metadata", strings.NewReader(`{"name":"Art #1","description":"test"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mint", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("absent wallet maps to 503", func(t *testing.T) {
		controller := newTestController(t, func(config *pipeline.ControllerConfig) {
			config.WalletProvider = nil
		})
		router := controller.GetRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newFileRequest(t, "photo.png", []byte("image-bytes")))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/metadata", strings.NewReader(`{"name":"Art #1","description":"test"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metadata/upload", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mint", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, pipeline.MintIdle, controller.State().MintStatus)
	})

	t.Run("upload failure maps to 502", func(t *testing.T) {
		controller := newTestController(t, func(config *pipeline.ControllerConfig) {
			config.Uploader = &mockUploader{
				uploadFile: func(ctx context.Context, filename string, content []byte) (string, error) {
					return "", assert.AnError
				},
			}
		})
		router := controller.GetRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newFileRequest(t, "photo.png", []byte("image-bytes")))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("missing file field maps to 400", func(t *testing.T) {
		controller := newTestController(t)
		router := controller.GetRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/file", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestApiMetadataPreview(t *testing.T) {
	var gatewayHits atomic.Int64

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHits.Add(1)
		io.WriteString(w, `{"name":"Art #1","description":"test","image":"ipfs://Qm111"}`)
	}))
	defer gateway.Close()

	controller := newTestController(t, func(config *pipeline.ControllerConfig) {
		config.HttpClient = gateway.Client()
		config.Uploader = &mockUploader{
			uploadFile: func(ctx context.Context, filename string, content []byte) (string, error) {
				return "https://gw.example/ipfs/Qm111", nil
			},
			uploadJson: func(ctx context.Context, filename string, json interface{}) (string, error) {
				return gateway.URL + "/ipfs/Qm222", nil
			},
		}
	})
	router := controller.GetRouter()

	t.Run("preview before upload maps to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metadata/preview", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	ctx := context.Background()
	require.NoError(t, controller.SelectFile("photo.png", []byte("image-bytes")))
	_, err := controller.UploadImage(ctx)
	require.NoError(t, err)
	_, err = controller.BuildMetadata("Art #1", "test")
	require.NoError(t, err)
	_, err = controller.UploadMetadata(ctx)
	require.NoError(t, err)

	t.Run("preview fetches the document", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metadata/preview", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var document map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&document))
		assert.Equal(t, "Art #1", document["name"])
		assert.Equal(t, int64(1), gatewayHits.Load())
	})

	t.Run("repeated previews are served from cache", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metadata/preview", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		assert.Equal(t, int64(1), gatewayHits.Load())
	})
}
