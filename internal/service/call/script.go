package call

import (
	"strings"
)

// DefaultScript is the generic opener used when a webhook arrives for a
// call with no stored context (e.g. after a process restart). The call
// goes on without personalization rather than failing.
const DefaultScript = "Hey! How's it going? I'm calling because I think I can really help your business grow. Are you free to talk for a quick minute?"

// GenerateScript builds the personalized opening line for a call. Pure
// and deterministic: identical inputs always produce identical output,
// and empty category/address never leave dangling clauses or stray
// punctuation.
func GenerateScript(companyName, category, address string) string {
	greeting := "Hi, I'm calling " + companyName
	if location := locationFromAddress(address); location != "" {
		greeting += " in " + location
	}

	sentences := []string{greeting + "."}
	if c := strings.TrimSpace(category); c != "" {
		sentences = append(sentences, "I see you're a "+strings.ToLower(c)+" business.")
	}
	sentences = append(sentences,
		"I'm reaching out because I think I can really help your business grow and reach more customers.",
		"Are you free to talk for a quick minute? I'd love to tell you about some options that could really make a difference for your business.",
	)

	return strings.Join(sentences, " ")
}

// locationFromAddress extracts the city/region from the trailing
// comma-delimited segment of a street address. Returns "" when the
// address has no usable segment.
func locationFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
