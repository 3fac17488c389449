package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes uploaded speech audio with OpenAI Whisper.
type WhisperTranscriber struct {
	client *openai.Client
}

// NewWhisperTranscriber creates a transcriber backed by the OpenAI API.
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{client: openai.NewClient(apiKey)}
}

// Transcribe returns the transcription text for one audio file. filename is
// needed so the API can infer the container format from its extension.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   audio,
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}
