package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert in handwriting analysis and dyslexia screening. " +
	"You evaluate a handwritten word image against a reference word and judge how closely it matches."

const userPromptFormat = "The reference word is: %q. Judge the handwritten sample on correctness, " +
	"letter formation and alignment, spacing and consistency, stroke quality, and slant. " +
	"Answer with whether the sample matches the reference (yes or no) followed by a similarity " +
	"percentage from 0%% to 100%%, for example: \"yes, 82%%\"."

// GPTAnalyzer asks a vision-capable OpenAI model for a handwriting verdict.
// The model answers in prose; callers parse the verdict with its documented
// fallbacks rather than expecting a schema.
type GPTAnalyzer struct {
	client *openai.Client
	model  string
}

// NewGPTAnalyzer creates an analyzer using the GPT-4o vision model.
func NewGPTAnalyzer(apiKey string) *GPTAnalyzer {
	return &GPTAnalyzer{client: openai.NewClient(apiKey), model: openai.GPT4o}
}

// AssessHandwriting submits the handwriting image with its reference word
// and returns the model's free-text verdict.
func (a *GPTAnalyzer) AssessHandwriting(ctx context.Context, expected string, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(userPromptFormat, expected),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("handwriting assessment: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("handwriting assessment: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
