package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioAgent_TextToSpeech(t *testing.T) {
	stub := newStub(map[string]any{"audio": "https://cdn.example.com/a.mp3"})
	a := NewAudioAgent(stub, 0, nil)

	got := a.Process(context.Background(), Payload{"text": "Hello"})

	assert.Equal(t, Result{
		"success":   true,
		"audio_url": "https://cdn.example.com/a.mp3",
		"text":      "Hello",
		"voice":     "alloy",
		"model":     "tts-1",
	}, got)
	call := stub.LastCall()
	assert.Equal(t, "audio/speech", call.Endpoint)
	assert.Equal(t, map[string]any{
		"model":           "tts-1",
		"input":           "Hello",
		"voice":           "alloy",
		"response_format": "mp3",
		"speed":           1.0,
	}, call.Body)
}

func TestAudioAgent_SpeechToText(t *testing.T) {
	stub := newStub(map[string]any{"text": "transcribed"})
	a := NewAudioAgent(stub, 0, nil)

	got := a.Process(context.Background(), Payload{"task_type": "speech_to_text", "audio": "base64data", "language": "fr"})

	assert.Equal(t, Result{"success": true, "text": "transcribed", "language": "fr", "model": "whisper-1"}, got)
	call := stub.LastCall()
	assert.Equal(t, "audio/transcriptions", call.Endpoint)
	assert.Equal(t, map[string]any{
		"file":            "base64data",
		"model":           "whisper-1",
		"language":        "fr",
		"response_format": "json",
		"temperature":     0,
	}, call.Body)
}

func TestAudioAgent_PassesThroughUpstream(t *testing.T) {
	resp := map[string]any{"error": "Request failed: 402 Client Error: Payment Required for url: x (please upgrade)"}

	tts := NewAudioAgent(newStub(resp), 0, nil)
	assert.Equal(t, Result(resp), tts.Process(context.Background(), Payload{"text": "hi"}))

	stt := NewAudioAgent(newStub(map[string]any{"status": "queued"}), 0, nil)
	assert.Equal(t, Result{"status": "queued"}, stt.Process(context.Background(), Payload{"task_type": "speech_to_text", "audio": "x"}))
}

func TestAudioAgent_ValidationAndUnknownTask(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"tts without text", Payload{}, "Missing required field: text"},
		{"stt without audio", Payload{"task_type": "speech_to_text", "text": "x"}, "Missing required field: audio"},
		{"unknown task", Payload{"task_type": "x", "text": "hi"}, "Unknown task type: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(nil)
			a := NewAudioAgent(stub, 0, nil)
			assert.Equal(t, Result{"error": tt.want}, a.Process(context.Background(), tt.payload))
			assert.Zero(t, stub.CallCount())
		})
	}
}
