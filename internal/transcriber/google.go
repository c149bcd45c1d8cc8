package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"google.golang.org/api/option"
)

type googleEngine struct {
	c            *speech.Client
	sampleRateHz int32
	logger       logger.Logger
}

// NewGoogleSpeech creates an Engine backed by Cloud Speech-to-Text.
// An empty credentialsFile falls back to application default credentials.
func NewGoogleSpeech(ctx context.Context, credentialsFile string, sampleRateHz int32, log logger.Logger) (Engine, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &googleEngine{c: c, sampleRateHz: sampleRateHz, logger: log}, nil
}

// language example: "en-US", "vi-VN"
func (g *googleEngine) Transcribe(ctx context.Context, wavPath, language string) ([]Segment, error) {
	if language == "" || language == "auto" {
		language = "en-US"
	}

	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}

	op, err := g.c.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            g.sampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("long running recognize: %w", err)
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait recognize: %w", err)
	}

	var (
		segments []Segment
		prevEnd  time.Duration
	)
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 || r.Alternatives[0].Transcript == "" {
			continue
		}
		end := prevEnd
		if r.ResultEndTime != nil {
			end = r.ResultEndTime.AsDuration()
		}
		segments = append(segments, Segment{Start: prevEnd, End: end, Text: r.Alternatives[0].Transcript})
		prevEnd = end
	}

	g.logger.Debug(ctx, "Google speech returned %d segments", len(segments))
	return segments, nil
}
