package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultDeepgramBaseURL = "https://api.deepgram.com"

// DeepgramSynthesizer renders prompt text to speech through Deepgram's
// aura voices. Responses are raw audio/mpeg bytes.
type DeepgramSynthesizer struct {
	apiKey  string
	voice   string
	baseURL string
	client  *http.Client
}

// NewDeepgramSynthesizer creates a synthesizer for the given voice
// (e.g. "aura-asteria-en"). The HTTP client carries no timeout of its own;
// callers bound each render with a context deadline.
func NewDeepgramSynthesizer(apiKey, voice string) *DeepgramSynthesizer {
	return &DeepgramSynthesizer{
		apiKey:  apiKey,
		voice:   voice,
		baseURL: defaultDeepgramBaseURL,
		client:  &http.Client{},
	}
}

// Synthesize renders text and returns the encoded audio stream.
func (s *DeepgramSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal speak request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/speak?model=%s", s.baseURL, url.QueryEscape(s.voice))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build speak request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speak request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("deepgram speak: status %d: %s", resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
	return audio, nil
}
