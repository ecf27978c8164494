package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

// NewGoogleSpeech defaults to WEBM_OPUS at 48kHz, what browsers record.
func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_WEBM_OPUS,
		SampleRateHz: 48000,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// language example: "en-US", "id-ID"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.Encoding,
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	// results are consecutive segments; keep the best alternative of each
	parts := make([]string, 0, len(resp.Results))
	var confSum float64
	for _, r := range resp.Results {
		var best *speechpb.SpeechRecognitionAlternative
		for _, alt := range r.Alternatives {
			if alt.Transcript == "" {
				continue
			}
			if best == nil || alt.Confidence > best.Confidence {
				best = alt
			}
		}
		if best != nil {
			parts = append(parts, strings.TrimSpace(best.Transcript))
			confSum += float64(best.Confidence)
		}
	}
	if len(parts) == 0 {
		return "", 0, nil
	}

	return strings.Join(parts, " "), confSum / float64(len(parts)), nil
}
