package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"match-orchestrator/internal/domain"
)

const (
	insightTemperature = 0.7
	insightMaxTokens   = 160
	describeMaxTokens  = 400
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Generator sends prompts to the generation gateway's chat endpoint. It
// serves both insight generation for the recommendation fan-out and profile
// descriptions for the indexing path. A shared limiter keeps the fan-out
// from flooding the gateway.
type Generator struct {
	BaseURL string
	Model   string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewGenerator constructs a generator for the given endpoint and model name.
func NewGenerator(baseURL, model string, httpClient *http.Client, rps float64, burst int) *Generator {
	if rps <= 0 {
		rps = 8
	}
	if burst <= 0 {
		burst = int(rps)
	}
	return &Generator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// GenerateInsight asks the model why the candidate matches and returns the
// plain-text answer.
func (g *Generator) GenerateInsight(ctx context.Context, req domain.InsightRequest) (string, error) {
	prompt := buildInsightPrompt(req)
	text, err := g.chat(ctx, prompt, insightMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("generation returned empty insight")
	}
	return text, nil
}

// DescribeProfile generates a first-person self-description of the tenant
// for embedding.
func (g *Generator) DescribeProfile(ctx context.Context, tenant domain.Tenant) (string, error) {
	name := tenant.DisplayName()
	if name == "" {
		name = "this member"
	}
	prompt := fmt.Sprintf(`You create a concise, engaging self-description from profile data.
Write a short paragraph in which the person introduces themselves, starting with a greeting and their name.
Focus on interests and what they might be looking for. Conversational tone, no headings.

Name: %s
Interests: %s`, name, tenant.InterestsCSV())

	text, err := g.chat(ctx, prompt, describeMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("generation returned empty description")
	}
	return text, nil
}

func buildInsightPrompt(req domain.InsightRequest) string {
	var b strings.Builder
	b.WriteString("You explain why a member of a social-connection platform is a promising match.\n")
	b.WriteString("Write 2-3 friendly sentences addressed to the searcher. Mention shared ground where it exists.\n")
	b.WriteString("Do not mention scores, IDs or that you are an AI.\n\n")
	if req.Query != "" {
		fmt.Fprintf(&b, "Search query: %s\n", req.Query)
	}
	fmt.Fprintf(&b, "Member ID: %s\n", req.TenantID)
	fmt.Fprintf(&b, "Member name: %s\n", req.Name)
	fmt.Fprintf(&b, "Similarity score: %.3f\n", req.Score)
	fmt.Fprintf(&b, "Member interests: %s\n", req.Interests)
	return b.String()
}

func (g *Generator) chat(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := chatRequest{
		Model:    g.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options: map[string]interface{}{
			"temperature": insightTemperature,
			"num_predict": maxTokens,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

// Version returns the wrapped model name.
func (g *Generator) Version() string {
	return g.Model
}

// NewGeneratorWithTimeout constructs a generator with its own http.Client,
// for callers outside the server wiring (the reindex CLI).
func NewGeneratorWithTimeout(baseURL, model string, timeoutSeconds int, rps float64, burst int) *Generator {
	timeout := 60 * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return NewGenerator(baseURL, model, &http.Client{Timeout: timeout}, rps, burst)
}

var (
	_ domain.InsightClient    = (*Generator)(nil)
	_ domain.ProfileDescriber = (*Generator)(nil)
)
