package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Generation parameters match the reference service configuration:
// a single candidate with deterministic-leaning but non-zero sampling.
const (
	geminiCandidateCount  = 1
	geminiMaxOutputTokens = 2048
	geminiTemperature     = 0.7
	geminiTopP            = 0.8
	geminiTopK            = 40
)

type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// NewGemini creates a client for the Generative Language REST API.
// baseURL overrides the production endpoint (used in tests).
func NewGemini(apiKey, model, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	CandidateCount  int     `json:"candidateCount"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

var geminiSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	var contents []geminiContent
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	body, err := json.Marshal(geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			CandidateCount:  geminiCandidateCount,
			MaxOutputTokens: geminiMaxOutputTokens,
			Temperature:     geminiTemperature,
			TopP:            geminiTopP,
			TopK:            geminiTopK,
		},
		SafetySettings: geminiSafetySettings,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("call gemini: %w", err)
	}
	defer func(b io.Closer) {
		err := b.Close()
		if err != nil {
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(data, 512))
	}

	var out geminiResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Response{}, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("gemini returned no candidates")
	}

	res := Response{
		Content: out.Candidates[0].Content.Parts[0].Text,
		Model:   c.model,
	}
	res.PromptTokens = out.UsageMetadata.PromptTokenCount
	res.CompletionTokens = out.UsageMetadata.CandidatesTokenCount
	res.TotalTokens = out.UsageMetadata.TotalTokenCount
	return res, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
