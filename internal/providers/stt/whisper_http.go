package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WhisperHTTP posts raw audio to a local faster-whisper service that answers
// {"text": "..."}.
type WhisperHTTP struct {
	URL string
	// Ext tells the service which container to decode, e.g. "webm".
	Ext    string
	client *http.Client
}

func NewWhisperHTTP(url string, timeout time.Duration) *WhisperHTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WhisperHTTP{
		URL:    strings.TrimRight(url, "/"),
		Ext:    "webm",
		client: &http.Client{Timeout: timeout},
	}
}

func (w *WhisperHTTP) Close() error { return nil }

// Transcribe returns confidence 1 on success; the service reports none.
func (w *WhisperHTTP) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(audio))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-audio-ext", w.Ext)
	if language != "" {
		// whisper wants "en", not "en-US"
		lang, _, _ := strings.Cut(language, "-")
		req.Header.Set("x-lang", strings.ToLower(lang))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, fmt.Errorf("whisper: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var body struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("whisper: decode response: %w", err)
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		return "", 0, nil
	}
	return text, 1, nil
}
