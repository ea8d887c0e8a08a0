package attachments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/povertyhq/poverty_backend/utils"
)

// ScantClient talks to the document scanning service. A scan request is a
// synchronous POST that answers with the scanned PDF body.
type ScantClient struct {
	address    string
	httpClient *http.Client
}

func NewScantClient(address string) *ScantClient {
	return &ScantClient{
		address:    address,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *ScantClient) Scan(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address+"/scans", nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: scant returned %d", utils.ErrorUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrorUpstream, err)
	}
	return body, "application/pdf", nil
}
