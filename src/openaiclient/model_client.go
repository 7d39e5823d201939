package openaiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cadenzr/turnpike/src/aisdk"
)

var _ aisdk.ModelClient = (*ModelClient)(nil)
var _ aisdk.Provider = (*Client)(nil)

// ModelClient is a client bound to a specific model.
type ModelClient struct {
	client *Client
	model  *aisdk.ModelInfo
}

// Model returns a client bound to the named model. The hosted default
// endpoint rejects unauthenticated requests, so a missing key fails here
// rather than on the first completion; custom base URLs may be keyless.
func (c *Client) Model(_ context.Context, modelName string) (aisdk.ModelClient, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if c.config.APIKey == "" && c.config.BaseURL == defaultBaseURL {
		return nil, ErrNoAPIKey
	}
	return &ModelClient{
		client: c,
		model:  &aisdk.ModelInfo{ID: modelName},
	}, nil
}

// CreateChatCompletion sends a chat completion request with the bound model.
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	req.Model = mc.model.ID
	req.Stream = false
	return mc.client.createChatCompletion(ctx, req)
}

// CreateChatCompletionStream sends a streaming chat completion request with
// the bound model.
func (mc *ModelClient) CreateChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	req.Model = mc.model.ID
	req.Stream = true
	return mc.client.createChatCompletionStream(ctx, req)
}

// GetModelInfo returns the bound model's information.
func (mc *ModelClient) GetModelInfo() *aisdk.ModelInfo {
	return mc.model
}

func (c *Client) createChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequestWithRetry(httpReq, body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	if result.Usage != nil {
		logger.Debug("chat completion successful", "usage_total", result.Usage.TotalTokens)
	} else {
		logger.Debug("chat completion successful", "usage_total", "unreported")
	}
	return &result, nil
}

func (c *Client) createChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	logger := c.logger.With("method", "CreateChatCompletionStream", "model", req.Model)
	logger.Debug("opening chat completion stream")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.doRequestWithRetry(httpReq, body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	return newSSEStream(resp.Body), nil
}
