// Package twiml builds the XML voice-response documents the telephony
// provider executes on each conversational turn.
package twiml

import (
	"encoding/xml"
	"fmt"
)

// Gather defaults matching the provider's speech-collection verb.
const (
	GatherInput         = "speech"
	GatherMethod        = "POST"
	GatherSpeechTimeout = "auto"
	GatherLanguage      = "en-US"
	GatherTimeoutSec    = 15

	FallbackVoice = "alice"
)

// Response is a voice-response document. Verb order is fixed: play the
// agent's line, open a speech-collection window, then the timeout
// fallback (re-prompt and redirect back to the handler).
type Response struct {
	XMLName  xml.Name  `xml:"Response"`
	Play     *Play     `xml:"Play,omitempty"`
	Gather   *Gather   `xml:"Gather,omitempty"`
	Say      *Say      `xml:"Say,omitempty"`
	Redirect *Redirect `xml:"Redirect,omitempty"`
}

// Play instructs the provider to fetch and play an audio URL.
type Play struct {
	URL string `xml:",chardata"`
}

// Say is the provider's built-in TTS fallback.
type Say struct {
	Voice string `xml:"voice,attr,omitempty"`
	Text  string `xml:",chardata"`
}

// Gather opens a bounded window to collect and transcribe speech.
type Gather struct {
	Input         string `xml:"input,attr"`
	Action        string `xml:"action,attr"`
	Method        string `xml:"method,attr"`
	SpeechTimeout string `xml:"speechTimeout,attr"`
	Language      string `xml:"language,attr"`
	Timeout       int    `xml:"timeout,attr"`
	Say           *Say   `xml:"Say,omitempty"`
}

// Redirect loops the call back to the handler when no speech arrives.
type Redirect struct {
	Method string `xml:"method,attr"`
	URL    string `xml:",chardata"`
}

// ConversationTurn builds the standard per-turn document: play audioURL,
// gather speech posting back to handlerURL, and on timeout say the
// re-prompt and redirect to handlerURL. The self-redirect is the call's
// only control structure; termination is provider- or policy-driven.
func ConversationTurn(audioURL, handlerURL, gatherPrompt, timeoutPrompt string) *Response {
	return &Response{
		Play: &Play{URL: audioURL},
		Gather: &Gather{
			Input:         GatherInput,
			Action:        handlerURL,
			Method:        GatherMethod,
			SpeechTimeout: GatherSpeechTimeout,
			Language:      GatherLanguage,
			Timeout:       GatherTimeoutSec,
			Say:           &Say{Voice: FallbackVoice, Text: gatherPrompt},
		},
		Say:      &Say{Text: timeoutPrompt},
		Redirect: &Redirect{Method: GatherMethod, URL: handlerURL},
	}
}

// Encode renders the document with the XML declaration.
func (r *Response) Encode() (string, error) {
	body, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("twiml: marshal response: %w", err)
	}
	return xml.Header + string(body), nil
}
