package twiml

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestConversationTurn_Encode(t *testing.T) {
	doc := ConversationTurn(
		"http://localhost:8080/webhook/audio?id=abc",
		"http://localhost:8080/webhook/voice",
		"Please respond now.",
		"I didn't hear anything. Let me try again.",
	)

	out, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.HasPrefix(out, xml.Header) {
		t.Error("expected XML declaration prefix")
	}
	for _, want := range []string{
		"<Play>http://localhost:8080/webhook/audio?id=abc</Play>",
		`input="speech"`,
		`action="http://localhost:8080/webhook/voice"`,
		`speechTimeout="auto"`,
		`language="en-US"`,
		`timeout="15"`,
		`<Say voice="alice">Please respond now.</Say>`,
		"<Redirect method=\"POST\">http://localhost:8080/webhook/voice</Redirect>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\ngot:\n%s", want, out)
		}
	}
}

func TestConversationTurn_VerbOrder(t *testing.T) {
	doc := ConversationTurn("http://a/audio", "http://a/handler", "p", "t")
	out, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	play := strings.Index(out, "<Play>")
	gather := strings.Index(out, "<Gather")
	redirect := strings.Index(out, "<Redirect")
	if !(play < gather && gather < redirect) {
		t.Errorf("expected Play < Gather < Redirect ordering, got:\n%s", out)
	}
}

func TestEncode_EscapesText(t *testing.T) {
	doc := ConversationTurn("http://a/audio?text=a%20b&x=1", "http://a/h", "a < b", "t")
	out, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Contains(out, "a < b") {
		t.Error("expected chardata to be escaped")
	}
	if !strings.Contains(out, "a &lt; b") {
		t.Errorf("expected escaped prompt, got:\n%s", out)
	}
}
