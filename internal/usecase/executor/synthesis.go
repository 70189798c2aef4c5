package executor

import (
	"context"
	"strings"
)

// Synthesizer combines a primary agent's text with secondary contributions
// into one response. Implementations may be LLM-backed; failures degrade to
// the unsynthesized primary result.
type Synthesizer interface {
	Synthesize(ctx context.Context, original, primary string, secondary []string) (string, error)
}

// sectionSynthesizer is the default: the primary text followed by an
// "Additional Information" section concatenating secondary texts in
// execution order.
type sectionSynthesizer struct{}

func (sectionSynthesizer) Synthesize(_ context.Context, _ string, primary string, secondary []string) (string, error) {
	if len(secondary) == 0 {
		return primary, nil
	}

	var b strings.Builder
	b.WriteString(primary)
	b.WriteString("\n\n## Additional Information\n")
	for _, s := range secondary {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String(), nil
}
