package routing

import "testing"

func TestExtractContentString(t *testing.T) {
	if got := ExtractContent("plain answer"); got != "plain answer" {
		t.Errorf("got %q", got)
	}
}

func TestExtractContentMessageShape(t *testing.T) {
	payload := map[string]any{
		"message": map[string]any{"content": "from message"},
	}
	if got := ExtractContent(payload); got != "from message" {
		t.Errorf("got %q", got)
	}
}

func TestExtractContentChoicesShape(t *testing.T) {
	payload := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": "from choices"}},
			map[string]any{"message": map[string]any{"content": "ignored"}},
		},
	}
	if got := ExtractContent(payload); got != "from choices" {
		t.Errorf("got %q", got)
	}
}

func TestExtractContentOpaque(t *testing.T) {
	if got := ExtractContent(42); got != "42" {
		t.Errorf("got %q", got)
	}
	payload := map[string]any{"unexpected": true}
	if got := ExtractContent(payload); got == "" {
		t.Error("opaque payload should render as non-empty string")
	}
}
