package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// Config captures the runtime settings for narration synthesis.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Engine          string
	Voices          []string
}

// SynthesizeAPI is the subset of the Polly client used by the synthesizer.
type SynthesizeAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Synthesizer turns narration text into MP3 audio.
type Synthesizer struct {
	api    SynthesizeAPI
	engine types.Engine
	voices []string
	pick   func(n int) int
}

// Option customizes the synthesizer.
type Option func(*Synthesizer)

// WithPicker overrides voice pool selection (useful for tests).
func WithPicker(pick func(n int) int) Option {
	return func(s *Synthesizer) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// NewSynthesizer constructs a synthesizer backed by a real Polly client.
// Static credentials from the config are preferred; when absent the default
// AWS credential chain applies.
func NewSynthesizer(ctx context.Context, cfg Config, opts ...Option) (*Synthesizer, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(strings.TrimSpace(cfg.Region)),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("speech: load aws config: %w", err)
	}
	return NewSynthesizerWithAPI(polly.NewFromConfig(awsCfg), cfg, opts...), nil
}

// NewSynthesizerWithAPI constructs a synthesizer around an existing API
// implementation.
func NewSynthesizerWithAPI(api SynthesizeAPI, cfg Config, opts ...Option) *Synthesizer {
	engine := types.Engine(strings.TrimSpace(cfg.Engine))
	if engine == "" {
		engine = types.EngineStandard
	}
	voices := make([]string, 0, len(cfg.Voices))
	for _, voice := range cfg.Voices {
		if trimmed := strings.TrimSpace(voice); trimmed != "" {
			voices = append(voices, trimmed)
		}
	}
	s := &Synthesizer{
		api:    api,
		engine: engine,
		voices: voices,
		pick:   rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PickVoice selects a voice from the configured pool.
func (s *Synthesizer) PickVoice() (string, error) {
	if len(s.voices) == 0 {
		return "", errors.New("speech: no voices configured")
	}
	return s.voices[s.pick(len(s.voices))], nil
}

// Voices returns the configured voice pool.
func (s *Synthesizer) Voices() []string {
	return append([]string(nil), s.voices...)
}

// Synthesize narrates the text with the supplied voice and returns MP3 bytes.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("speech: narration text required")
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return nil, errors.New("speech: voice required")
	}

	out, err := s.api.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		TextType:     types.TextTypeText,
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      types.VoiceId(voice),
		Engine:       s.engine,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize with voice %s: %w", voice, err)
	}
	if out.AudioStream == nil {
		return nil, errors.New("speech: no audio stream returned")
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("speech: empty audio stream")
	}
	return audio, nil
}
