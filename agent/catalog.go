package agent

import "maps"

// CatalogEntry Agent 的静态展示信息
type CatalogEntry struct {
	ID             string
	Name           string
	Description    string
	Category       string
	Kind           Kind
	ExamplePayload Payload
}

// registry 固定注册表，顺序即 IDs() 的返回顺序
var registry = []CatalogEntry{
	{
		ID:          "writer",
		Name:        "Writer Agent",
		Description: "AI agent specialized in creative writing and content creation",
		Category:    "✍️ Writing",
		Kind:        KindText,
		ExamplePayload: Payload{
			"prompt":      "Write a short story about...",
			"max_tokens":  500,
			"temperature": 0.8,
		},
	},
	{
		ID:          "code-assistant",
		Name:        "Code Assistant",
		Description: "AI agent for code generation, debugging, and programming help",
		Category:    "💻 Developer",
		Kind:        KindCode,
		ExamplePayload: Payload{
			"task":       "Create a function that...",
			"language":   "python",
			"max_tokens": 1000,
		},
	},
	{
		ID:          "image-generator",
		Name:        "Image Generator",
		Description: "Create stunning AI-generated images and artwork",
		Category:    "🎨 Images",
		Kind:        KindImage,
		ExamplePayload: Payload{
			"prompt":  "A beautiful landscape...",
			"size":    "1024x1024",
			"quality": "standard",
		},
	},
	{
		ID:          "voice-assistant",
		Name:        "Voice Assistant",
		Description: "Text-to-speech and speech processing capabilities",
		Category:    "🎤 Audio",
		Kind:        KindAudio,
		ExamplePayload: Payload{
			"task_type": "text_to_speech",
			"text":      "Hello, this is a test...",
			"voice":     "alloy",
		},
	},
	{
		ID:          "chat-bot",
		Name:        "Chat Bot",
		Description: "Conversational AI for interactive discussions",
		Category:    "💬 Chat",
		Kind:        KindText,
		ExamplePayload: Payload{
			"prompt":         "Tell me about...",
			"system_message": "You are a helpful assistant",
		},
	},
	{
		ID:          "translator",
		Name:        "Translator",
		Description: "Multi-language translation and localization",
		Category:    "🌍 Translation",
		Kind:        KindText,
		ExamplePayload: Payload{
			"prompt":         "Translate to French: Hello world",
			"system_message": "You are a professional translator",
		},
	},
}

func lookup(id string) (CatalogEntry, bool) {
	for _, e := range registry {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// clone 返回条目副本，示例 payload 单独复制，调用方修改不会影响注册表
func (e CatalogEntry) clone() CatalogEntry {
	e.ExamplePayload = maps.Clone(e.ExamplePayload)
	return e
}
