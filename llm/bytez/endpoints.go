package bytez

// REST 端点
const (
	EndpointSpeech         = "audio/speech"
	EndpointTranscriptions = "audio/transcriptions"
	EndpointImageGenerate  = "images/generations"
	EndpointImageEdit      = "images/edits"
)

// ModelEndpoint 返回模型调用端点 models/v2/<model>
func ModelEndpoint(model string) string {
	return "models/v2/" + model
}
