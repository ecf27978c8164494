package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yoockh/interviewpilot/internal/utils"
)

type fakeSTT struct {
	text string
	err  error
	lang string
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, language string) (string, float64, error) {
	f.lang = language
	return f.text, 0.9, f.err
}

func (f *fakeSTT) Close() error { return nil }

type fakeUploader struct {
	name string
	body string
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	u.name, u.body = name, string(b)
	if u.err != nil {
		return "", u.err
	}
	return "gs://bucket/" + name, nil
}

func TestTranscribeArchivesAndTranscribes(t *testing.T) {
	p := &fakeSTT{text: " I enjoy teamwork "}
	up := &fakeUploader{}
	svc := NewTranscriptionService(p, up, "en-US", nil)

	out, err := svc.Transcribe(context.Background(), "iv-1", "answer.OGG", []byte("audio"), "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "I enjoy teamwork" || p.lang != "en-US" {
		t.Fatalf("unexpected transcript %+v (lang %q)", out, p.lang)
	}
	if !strings.HasPrefix(up.name, "answers/iv-1/") || !strings.HasSuffix(up.name, ".ogg") || up.body != "audio" {
		t.Fatalf("unexpected upload %q", up.name)
	}
	if out.AudioPath != "gs://bucket/"+up.name {
		t.Fatalf("unexpected audio path %q", out.AudioPath)
	}
}

func TestTranscribeArchiveFailureIsNotFatal(t *testing.T) {
	svc := NewTranscriptionService(&fakeSTT{text: "hi"}, &fakeUploader{err: errors.New("denied")}, "", nil)
	out, err := svc.Transcribe(context.Background(), "iv-1", "a.webm", []byte("x"), "id-ID")
	if err != nil || out.Text != "hi" || out.AudioPath != "" {
		t.Fatalf("got %+v, %v", out, err)
	}
}

func TestTranscribeErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewTranscriptionService(nil, nil, "", nil).Transcribe(ctx, "", "a", []byte("x"), ""); !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE without provider, got %v", err)
	}

	svc := NewTranscriptionService(&fakeSTT{err: errors.New("quota")}, nil, "", nil)
	if _, err := svc.Transcribe(ctx, "", "a", nil, ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for empty audio, got %v", err)
	}
	if _, err := svc.Transcribe(ctx, "", "a", make([]byte, MaxAudioBytes+1), ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for large audio, got %v", err)
	}
	if _, err := svc.Transcribe(ctx, "", "a", []byte("x"), ""); !utils.Retryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
