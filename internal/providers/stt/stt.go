package stt

import "context"

// Provider turns one recorded answer into text. language is a BCP-47 tag
// such as "en-US"; confidence is in [0,1], or 1 when the backend reports none.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
