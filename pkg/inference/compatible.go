package inference

import "cmp"

// OpenAI-compatible providers differ from OpenAI only by endpoint and default model.

// NewGrokInferencer targets the xAI API.
func NewGrokInferencer(apiKey string, model string) *OpenAIInferencer {
	o := NewOpenAIInferencer(apiKey, cmp.Or(model, "grok-4-fast-reasoning"))
	o.ChangeBaseURL("https://api.x.ai/v1")
	return o
}

// NewKimiInferencer targets the Kimi coding API.
func NewKimiInferencer(apiKey string, model string) *OpenAIInferencer {
	o := NewOpenAIInferencer(apiKey, cmp.Or(model, "kimi-for-coding"))
	o.ChangeBaseURL("https://api.kimi.com/coding/v1")
	return o
}

// NewMoonshotInferencer targets the Moonshot AI API.
func NewMoonshotInferencer(apiKey string, model string) *OpenAIInferencer {
	o := NewOpenAIInferencer(apiKey, cmp.Or(model, "kimi-k2-5"))
	o.ChangeBaseURL("https://api.moonshot.ai/v1")
	return o
}

// NewLocalInferencer targets an OpenAI-compatible server such as LM Studio.
// The model is left to the server when empty.
func NewLocalInferencer(baseURL string, model string) *OpenAIInferencer {
	o := NewOpenAIInferencer("local", model)
	o.ChangeBaseURL(cmp.Or(baseURL, "http://localhost:1234/v1"))
	o.SetModel(model)
	return o
}
