package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/outliner/internal/inference"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model, baseURL string, retryAttempts uint) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

const generalPrompt = `You are a writing assistant inside an outliner note editor.
Notes are nested bullet lists. Answer concisely in plain text.
When you return list items, use one line per item and indent children with two spaces.`

var skillPrompts = map[inference.SkillID]string{
	inference.SkillSummarize: generalPrompt + `

Summarize the text the user sends in at most five short bullet points.
Keep names, numbers and dates exactly as written.`,
	inference.SkillExpand: generalPrompt + `

Expand the text the user sends into a more detailed outline.
Keep the original points as the top-level items and add two to four supporting children under each.`,
	inference.SkillOutline: generalPrompt + `

Turn the text the user sends into a hierarchical outline.
Group related sentences under a short heading item. Do not invent content.`,
	inference.SkillProofread: generalPrompt + `

Correct spelling, grammar and punctuation of the text the user sends.
Return only the corrected text, preserving its line structure and any inline markup tags.`,
}

// SystemPrompt returns the system prompt of a skill. Unknown skills use the general assistant.
func SystemPrompt(skillID inference.SkillID) string {
	if prompt, ok := skillPrompts[skillID]; ok {
		return prompt
	}
	return generalPrompt
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	// Empty choices are usually a truncated response
	if strings.Contains(errStr, "empty response") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// Complete implements the inference.Client interface
func (client *Client) Complete(
	ctx context.Context,
	params inference.CompleteRequest,
) (inference.CompleteResponse, error) {
	var result inference.CompleteResponse
	if err := retry.Do(
		func() error {
			response, err := client.complete(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Info("Retrying OpenAI API call",
					"skillID", params.SkillID,
					"error", err,
				)
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return inference.CompleteResponse{}, err
	}
	return result, nil
}

func (client *Client) getRequestBody(params inference.CompleteRequest) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.3,
		Messages: []Message{
			{Role: RoleSystem, Content: SystemPrompt(params.SkillID)},
			{Role: RoleUser, Content: params.Message},
		},
	}
}

func (client *Client) complete(
	ctx context.Context,
	params inference.CompleteRequest,
) (inference.CompleteResponse, error) {
	if strings.TrimSpace(params.Message) == "" {
		return inference.CompleteResponse{}, fmt.Errorf("empty message")
	}
	requestBody := client.getRequestBody(params)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.CompleteResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.CompleteResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.CompleteResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.CompleteResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"skillID", params.SkillID,
		"usage", responseBody.Usage,
	)
	return inference.CompleteResponse{Text: strings.TrimSpace(content)}, nil
}
