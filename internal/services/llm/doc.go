// Package llm wraps the OpenRouter chat completion API with JSON-only
// responses, bounded retry with exponential backoff, and tolerant decoding
// of model output that surrounds its JSON payload with prose or code
// fences. Vision requests send base64 data-URL image parts.
package llm
