package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
)

// GatewayUploader speaks the upload service's wire contract: a POST with a
// multipart body carrying one part named "file", answered with a single
// resolvable address string.
type GatewayUploader struct {
	endpoint   string
	httpClient *http.Client
}

func NewGatewayUploader(endpoint string, httpClient *http.Client) *GatewayUploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &GatewayUploader{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (u *GatewayUploader) UploadFile(ctx context.Context, filename string, content []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: no filename supplied", errs.ErrValidation)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: no file content supplied", errs.ErrValidation)
	}

	return u.upload(ctx, filename, "application/octet-stream", content)
}

func (u *GatewayUploader) UploadJson(ctx context.Context, filename string, v interface{}) (string, error) {
	content, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: failed to serialize document: %v", errs.ErrValidation, err)
	}

	return u.upload(ctx, filename, "application/json", content)
}

func (u *GatewayUploader) upload(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build multipart body: %v", errs.ErrUpload, err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("%w: failed to build multipart body: %v", errs.ErrUpload, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to build multipart body: %v", errs.ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", errs.ErrUpload, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", errs.ErrUpload, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: service responded %d: %s", errs.ErrUpload, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	address := decodeAddress(raw)
	if address == "" {
		return "", fmt.Errorf("%w: service returned an empty address", errs.ErrUpload)
	}

	return address, nil
}

// decodeAddress accepts either a JSON-encoded string or a bare string body;
// the transport encoding is otherwise opaque.
func decodeAddress(raw []byte) string {
	var address string
	if err := json.Unmarshal(raw, &address); err == nil {
		return strings.TrimSpace(address)
	}

	return strings.TrimSpace(string(raw))
}
