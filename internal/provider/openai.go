package provider

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parleyhq/parley/internal/speech"
	"github.com/parleyhq/parley/internal/style"
)

// Config holds the OpenAI adapter settings. Credentials are injected by the
// caller; this package never reads the environment.
type Config struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	TranscriptionModel string
	SpeechModel        string
	Voice              string
	SampleRate         int
	EmotionMaxTokens   int
	ResponseMaxTokens  int
}

// DefaultConfig returns the default OpenAI adapter settings.
func DefaultConfig() Config {
	return Config{
		ChatModel:          openai.GPT4,
		TranscriptionModel: openai.Whisper1,
		SpeechModel:        string(openai.TTSModel1),
		Voice:              string(openai.VoiceAlloy),
		SampleRate:         16000,
		EmotionMaxTokens:   10,
		ResponseMaxTokens:  150,
	}
}

// OpenAI implements Transcriber, EmotionClassifier, ResponseGenerator and
// Synthesizer against the OpenAI API.
type OpenAI struct {
	client *openai.Client
	cfg    Config
	player speech.Player
}

// NewOpenAI creates the OpenAI adapter suite. player may be nil, in which
// case synthesis is skipped with a debug log.
func NewOpenAI(cfg Config, player speech.Player) *OpenAI {
	def := DefaultConfig()
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = def.TranscriptionModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = def.SpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = def.Voice
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.EmotionMaxTokens <= 0 {
		cfg.EmotionMaxTokens = def.EmotionMaxTokens
	}
	if cfg.ResponseMaxTokens <= 0 {
		cfg.ResponseMaxTokens = def.ResponseMaxTokens
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		player: player,
	}
}

// Transcribe uploads the captured audio as WAV and returns the transcript.
func (o *OpenAI) Transcribe(ctx context.Context, samples []int16) (string, error) {
	wav := speech.EncodeWAV(samples, o.cfg.SampleRate)

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.TranscriptionModel,
		Reader:   bytes.NewReader(wav),
		FilePath: "speech.wav",
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// ClassifyEmotion returns a short emotional-tone label for the text. The
// label is whatever the model says; it is not validated against a vocabulary.
func (o *OpenAI) ClassifyEmotion(ctx context.Context, text string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.cfg.ChatModel,
		MaxTokens: o.cfg.EmotionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Detect the emotional tone of this text. Answer with a single word."},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var responseTmpl = template.Must(template.New("response").Parse(
	`You are role-playing as the person the user is negotiating with in the following scenario:
Scenario: {{.Scenario}}
Conversation Style: {{.Style}}
User's Emotional Tone: {{.Emotion}}
User's Input: "{{.UserText}}"
Respond as the counterpart in the scenario, keeping the conversation realistic and engaging.
{{- if .Directive}}
{{.Directive}}
{{- end}}`))

// buildResponsePrompt fills the counterpart prompt template, including the
// style directive when the style is a known one.
func buildResponsePrompt(req ResponseRequest) (string, error) {
	directive := ""
	if s := style.Get(string(req.Style)); s != nil {
		directive = s.Directive
	}

	var buf bytes.Buffer
	err := responseTmpl.Execute(&buf, map[string]string{
		"Scenario":  req.Scenario,
		"Style":     string(req.Style),
		"Emotion":   req.Emotion,
		"UserText":  req.UserText,
		"Directive": directive,
	})
	if err != nil {
		return "", fmt.Errorf("execute response template: %w", err)
	}
	return buf.String(), nil
}

// GenerateResponse produces the counterpart's next utterance, bounded by the
// configured response token limit.
func (o *OpenAI) GenerateResponse(ctx context.Context, req ResponseRequest) (string, error) {
	prompt, err := buildResponsePrompt(req)
	if err != nil {
		return "", err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.cfg.ChatModel,
		MaxTokens: o.cfg.ResponseMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Synthesize converts the text to speech and plays it.
func (o *OpenAI) Synthesize(ctx context.Context, text string) error {
	if o.player == nil {
		slog.Debug("No audio player configured, skipping playback")
		return nil
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(o.cfg.SpeechModel),
		Input: text,
		Voice: openai.SpeechVoice(o.cfg.Voice),
	})
	if err != nil {
		return fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	if err := o.player.Play(ctx, resp); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}
