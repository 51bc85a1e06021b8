package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GGNStatus is returned by the GLOBALG.A.P. registry lookup service.
type GGNStatus struct {
	GGN             string `json:"ggn"`
	Valid           bool   `json:"valid"`
	ProducerName    string `json:"producer_name"`
	CertificateBody string `json:"certificate_body"`
	ValidUntil      string `json:"valid_until"` // ISO 8601 date
}

// GGNClient is an HTTP client for the external GLOBALG.A.P. registry lookup
// service. The lookup is advisory — the allocation-time certification gate
// runs against the locally stored certificate_expiry, never against this
// remote call, so a registry outage cannot block allocations.
type GGNClient struct {
	registryURL string
	httpClient  *http.Client
}

func NewGGNClient(registryURL string) *GGNClient {
	return &GGNClient{
		registryURL: registryURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Verify queries the registry for the given GGN.
func (c *GGNClient) Verify(ctx context.Context, ggn string) (*GGNStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.registryURL+"/v1/ggn/"+ggn, nil)
	if err != nil {
		return nil, fmt.Errorf("ggn: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ggn: registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &GGNStatus{GGN: ggn, Valid: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ggn: registry returned %d", resp.StatusCode)
	}

	var status GGNStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("ggn: decode response: %w", err)
	}
	return &status, nil
}
