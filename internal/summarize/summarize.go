// Package summarize wraps the outbound chat-completion call used for the
// activity summary endpoint. The service is an opaque external
// collaborator; any failure surfaces as a generic error upstream.
package summarize

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful assistant summarizing user activity on a social platform."

var ErrUnavailable = errors.New("summarization service unavailable")

// Summarizer produces a short natural-language summary of user content.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Client struct {
	api   *openai.Client
	model string
}

// NewClient returns nil when no API key is configured; callers treat a
// nil client as the feature being switched off.
func NewClient(apiKey, model string) *Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = openai.GPT4
	}
	return &Client{api: openai.NewClient(apiKey), model: model}
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c == nil {
		return "", ErrUnavailable
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Summarize the following user activity:\n\n" + text},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrUnavailable
	}
	return resp.Choices[0].Message.Content, nil
}
