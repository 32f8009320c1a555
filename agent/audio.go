package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/llm/bytez"
)

// 音频任务类型
const (
	AudioTaskTextToSpeech = "text_to_speech"
	AudioTaskSpeechToText = "speech_to_text"
)

const (
	DefaultTTSModel = "tts-1"
	DefaultSTTModel = "whisper-1"

	defaultVoice       = "alloy"
	defaultAudioFormat = "mp3"
	defaultSpeed       = 1.0
	defaultLanguage    = "en"
)

// AudioAgent 语音合成与识别 Agent，服务 voice-assistant
type AudioAgent struct {
	rest    Requester
	timeout time.Duration
	logger  *zap.Logger
}

// NewAudioAgent 创建音频 Agent
func NewAudioAgent(rest Requester, timeout time.Duration, logger *zap.Logger) *AudioAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioAgent{
		rest:    rest,
		timeout: timeout,
		logger:  logger.With(zap.String("agent_kind", string(KindAudio))),
	}
}

// Kind 实现 Agent
func (a *AudioAgent) Kind() Kind { return KindAudio }

// Process 按 task_type 分派：text_to_speech（默认）或 speech_to_text
func (a *AudioAgent) Process(ctx context.Context, p Payload) Result {
	switch task := p.String("task_type", AudioTaskTextToSpeech); task {
	case AudioTaskTextToSpeech:
		return a.TextToSpeech(ctx, p)
	case AudioTaskSpeechToText:
		return a.SpeechToText(ctx, p)
	default:
		return Failure("Unknown task type: " + task)
	}
}

// TextToSpeech 文本转语音。必填字段：text。
func (a *AudioAgent) TextToSpeech(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "text"); msg != "" {
		return Failure(msg)
	}

	text := p.Raw("text", "")
	voice := p.Raw("voice", defaultVoice)
	model := p.Raw("model", DefaultTTSModel)
	body := map[string]any{
		"model":           model,
		"input":           text,
		"voice":           voice,
		"response_format": p.Raw("format", defaultAudioFormat),
		"speed":           p.Raw("speed", defaultSpeed),
	}

	resp := a.rest.Request(ctx, bytez.EndpointSpeech, body, "POST", a.timeout)
	audioURL, ok := resp["audio"]
	if !ok {
		a.logger.Debug("unexpected upstream response", zap.String("endpoint", bytez.EndpointSpeech))
		return Result(resp)
	}
	return Result{
		"success":   true,
		"audio_url": audioURL,
		"text":      text,
		"voice":     voice,
		"model":     model,
	}
}

// SpeechToText 语音转文本。必填字段：audio。
func (a *AudioAgent) SpeechToText(ctx context.Context, p Payload) Result {
	if msg := Validate(p, "audio"); msg != "" {
		return Failure(msg)
	}

	model := p.Raw("model", DefaultSTTModel)
	language := p.Raw("language", defaultLanguage)
	body := map[string]any{
		"file":            p.Raw("audio", ""),
		"model":           model,
		"language":        language,
		"response_format": "json",
		"temperature":     p.Raw("temperature", 0),
	}

	resp := a.rest.Request(ctx, bytez.EndpointTranscriptions, body, "POST", a.timeout)
	text, ok := resp["text"]
	if !ok {
		a.logger.Debug("unexpected upstream response", zap.String("endpoint", bytez.EndpointTranscriptions))
		return Result(resp)
	}
	return Result{
		"success":  true,
		"text":     text,
		"language": language,
		"model":    model,
	}
}
