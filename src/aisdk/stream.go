package aisdk

import (
	"errors"
	"io"
	"strings"
)

// StreamCallback is called for each chunk read from a stream.
type StreamCallback func(chunk *StreamChunk) error

// StreamToCallback reads a stream to completion, invoking the callback for
// each chunk. The stream is closed before returning.
func StreamToCallback(stream StreamInterface, callback StreamCallback) error {
	defer stream.Close()

	for {
		chunk, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if chunk == nil {
			return nil
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// StreamAggregator collects streaming chunks into a complete response.
type StreamAggregator struct {
	ID           string
	Created      int64
	Model        string
	FinishReason string
	Usage        *Usage

	content   strings.Builder
	toolCalls []ToolCall
}

// AddChunk folds one chunk into the aggregated state.
func (a *StreamAggregator) AddChunk(chunk *StreamChunk) {
	if a.ID == "" {
		a.ID = chunk.ID
	}
	if a.Created == 0 {
		a.Created = chunk.Created
	}
	if a.Model == "" {
		a.Model = chunk.Model
	}
	if chunk.Usage != nil {
		a.Usage = chunk.Usage
	}
	for _, choice := range chunk.Choices {
		if choice.FinishReason != "" {
			a.FinishReason = choice.FinishReason
		}
		if choice.Delta == nil {
			continue
		}
		a.content.WriteString(choice.Delta.Content)
		a.toolCalls = append(a.toolCalls, choice.Delta.ToolCalls...)
	}
}

// Response builds the final non-streaming response from accumulated chunks.
func (a *StreamAggregator) Response() *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      a.ID,
		Object:  "chat.completion",
		Created: a.Created,
		Model:   a.Model,
		Usage:   a.Usage,
		Choices: []Choice{{
			Message: Message{
				Role:      RoleAssistant,
				Content:   a.content.String(),
				ToolCalls: a.toolCalls,
			},
			FinishReason: a.FinishReason,
		}},
	}
}
