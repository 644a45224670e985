package platform

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
)

// #endregion imports

// #region client-struct

// RemoteClient talks JSON over HTTP to the platform-services backend that
// fronts the concrete social vendors. It implements Analyzer, Publisher,
// MetricsFetcher, and CredentialValidator.
type RemoteClient struct {
	baseURL string
	http    *http.Client
}

// NewRemoteClient creates a client for the given base URL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// #endregion client-struct

// #region analyzer

type analyzeRequest struct {
	ContentID string `json:"contentId"`
	Caption   string `json:"caption,omitempty"`
	Platform  string `json:"platform,omitempty"`
}

// Analyze requests the four quality sub-scores for an item.
func (c *RemoteClient) Analyze(ctx context.Context, item *content.Item) (content.AIScores, error) {
	var scores content.AIScores
	err := c.post(ctx, "/v1/analyze", analyzeRequest{
		ContentID: item.ID,
		Caption:   item.Caption,
		Platform:  item.Platform,
	}, &scores)
	return scores, err
}

// #endregion analyzer

// #region publisher

type publishRequest struct {
	UserID    string `json:"userId"`
	ContentID string `json:"contentId"`
	Caption   string `json:"caption,omitempty"`
	Platform  string `json:"platform"`
}

// Publish posts the item through the backend to the social platform.
func (c *RemoteClient) Publish(ctx context.Context, userID string, item *content.Item, platform string) (PublishResult, error) {
	var result PublishResult
	err := c.post(ctx, "/v1/publish", publishRequest{
		UserID:    userID,
		ContentID: item.ID,
		Caption:   item.Caption,
		Platform:  platform,
	}, &result)
	return result, err
}

// #endregion publisher

// #region metrics

// FetchMetrics retrieves observed engagement for a published item.
func (c *RemoteClient) FetchMetrics(ctx context.Context, contentID string) (MetricsResult, error) {
	var result MetricsResult
	err := c.get(ctx, "/v1/metrics/"+url.PathEscape(contentID), &result)
	return result, err
}

// #endregion metrics

// #region credentials

// Validate checks the user's platform credentials.
func (c *RemoteClient) Validate(ctx context.Context, userID, platform string) (CredentialResult, error) {
	var result CredentialResult
	err := c.get(ctx, "/v1/credentials/"+url.PathEscape(userID)+"/"+url.PathEscape(platform), &result)
	return result, err
}

// #endregion credentials

// #region transport

func (c *RemoteClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *RemoteClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	return c.do(req, out)
}

func (c *RemoteClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// #endregion transport
