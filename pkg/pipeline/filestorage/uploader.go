package filestorage

import "context"

// Uploader submits blobs to a content-addressed store and returns the
// gateway address the content can be retrieved from. Every call is a single
// attempt; retries are the caller's decision.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, content []byte) (string, error)
	UploadJson(ctx context.Context, filename string, json interface{}) (string, error)
}
