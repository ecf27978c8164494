package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWhisperHTTPTranscribe(t *testing.T) {
	var gotBody, gotLang, gotExt, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotLang = r.Header.Get("x-lang")
		gotExt = r.Header.Get("x-audio-ext")
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  I worked on APIs  "}`))
	}))
	defer srv.Close()

	w := NewWhisperHTTP(srv.URL+"/", time.Second)
	text, conf, err := w.Transcribe(context.Background(), []byte("audio-bytes"), "en-US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I worked on APIs" || conf != 1 {
		t.Fatalf("got %q %v", text, conf)
	}
	if gotBody != "audio-bytes" || gotLang != "en" || gotExt != "webm" || gotType != "application/octet-stream" {
		t.Fatalf("unexpected request: body=%q lang=%q ext=%q type=%q", gotBody, gotLang, gotExt, gotType)
	}
}

func TestWhisperHTTPEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	text, conf, err := NewWhisperHTTP(srv.URL, 0).Transcribe(context.Background(), nil, "")
	if err != nil || text != "" || conf != 0 {
		t.Fatalf("got %q %v %v", text, conf, err)
	}
}

func TestWhisperHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"text":"","error":"ffmpeg failed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, _, err := NewWhisperHTTP(srv.URL, time.Second).Transcribe(context.Background(), []byte("x"), "en"); err == nil {
		t.Fatal("expected error on 500")
	}
}
