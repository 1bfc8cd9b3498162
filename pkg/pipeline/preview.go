package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
)

const (
	previewCacheSize = 128
	previewCacheTTL  = 5 * time.Minute
	previewMaxSize   = 1 << 20
)

// MetadataPreview fetches the uploaded metadata document back through its
// gateway address. Documents are cached and concurrent fetches for the same
// address collapse into one request.
func (c *Controller) MetadataPreview(ctx context.Context) (string, error) {
	c.mu.Lock()
	address := c.run.metadataAddress
	c.mu.Unlock()

	if address == "" {
		return "", fmt.Errorf("%w: metadata must be uploaded first", errs.ErrValidation)
	}

	if cached, ok := c.previewCache.Get(address); ok {
		return cached, nil
	}

	document, err, _ := c.previewGroup.Do(address, func() (interface{}, error) {
		fetched, err := c.fetchDocument(ctx, address)
		if err != nil {
			return nil, err
		}

		c.previewCache.Add(address, fetched)
		return fetched, nil
	})
	if err != nil {
		return "", err
	}

	return document.(string), nil
}

func (c *Controller) fetchDocument(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create GET request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway responded %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, previewMaxSize))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
