package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dyscover/dyscover-backend/internal/model"
)

// Client calls the stutter classifier service: the CNN model served as an
// internal HTTP endpoint. It accepts one audio file and answers with a
// binary label.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a classifier client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{}}
}

type classifyResponse struct {
	Label string `json:"label"`
}

// Classify uploads the audio and returns the classifier's verbatim label.
func (c *Client) Classify(ctx context.Context, audio io.Reader, filename string) (model.StutterMetric, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return model.StutterUnknown, fmt.Errorf("build classify request: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return model.StutterUnknown, fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.StutterUnknown, fmt.Errorf("finalize classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", &buf)
	if err != nil {
		return model.StutterUnknown, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return model.StutterUnknown, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.StutterUnknown, fmt.Errorf("classifier: status %d: %s", resp.StatusCode, body)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.StutterUnknown, fmt.Errorf("decode classifier response: %w", err)
	}

	switch model.StutterMetric(out.Label) {
	case model.StutterDetected:
		return model.StutterDetected, nil
	case model.StutterNone:
		return model.StutterNone, nil
	default:
		return model.StutterUnknown, fmt.Errorf("classifier: unrecognized label %q", out.Label)
	}
}
