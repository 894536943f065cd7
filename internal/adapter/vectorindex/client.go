package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"match-orchestrator/internal/domain"
)

// Client talks to the vector-similarity search service. The service embeds
// query text on its side; this client never sees raw vectors except on
// upsert.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout int) *Client {
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client reusing a shared pooled http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{BaseURL: baseURL, Client: httpClient}
}

type searchResponse struct {
	Query string      `json:"query"`
	Hits  []searchHit `json:"hits"`
}

type searchHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

func (c *Client) Search(ctx context.Context, query string, topK int) ([]domain.SimilarityHit, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v1/search", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("top_k", strconv.Itoa(topK))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status: %d", resp.StatusCode)
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]domain.SimilarityHit, len(sResp.Hits))
	for i, h := range sResp.Hits {
		hits[i] = domain.SimilarityHit{
			EmbeddingID: h.ID,
			Score:       h.Score,
		}
	}

	return hits, nil
}

type upsertRequest struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

func (c *Client) Upsert(ctx context.Context, embeddingID string, vector []float32) error {
	payload, err := json.Marshal(upsertRequest{ID: embeddingID, Vector: vector})
	if err != nil {
		return fmt.Errorf("failed to marshal upsert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/vectors", c.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("upsert request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upsert returned status: %d", resp.StatusCode)
	}
	return nil
}

var _ domain.VectorSearchClient = (*Client)(nil)
