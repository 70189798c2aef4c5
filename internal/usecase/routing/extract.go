package routing

import "fmt"

// ExtractContent pulls assistant text out of an agent result payload. Three
// shapes are recognized: a direct string, {message:{content}}, and
// {choices:[{message:{content}}]}. Anything else is rendered as an opaque
// string so wire-format variance never propagates past this point.
func ExtractContent(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(map[string]any); ok {
			if content, ok := msg["content"].(string); ok {
				return content
			}
		}
		if choices, ok := v["choices"].([]any); ok && len(choices) > 0 {
			if choice, ok := choices[0].(map[string]any); ok {
				if msg, ok := choice["message"].(map[string]any); ok {
					if content, ok := msg["content"].(string); ok {
						return content
					}
				}
			}
		}
	}
	return fmt.Sprintf("%v", payload)
}
