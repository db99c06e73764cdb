package domain

import (
	"time"
)

// TurnRole identifies the speaker of a transcript turn.
type TurnRole string

const (
	RoleAgent        TurnRole = "agent"
	RoleCounterparty TurnRole = "counterparty"
)

// Turn is one spoken exchange in a call transcript.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// CallContext holds the per-call conversation state, keyed by the
// provider-assigned call SID. The transcript alternates strictly between
// agent and counterparty turns, starting with the agent's opening script.
type CallContext struct {
	CompanyName string `json:"company_name"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	Summary     string `json:"summary"`
	Website     string `json:"website"`
	Script      string `json:"script"`
	Transcript  []Turn `json:"transcript"`

	// ScriptAudioID points at the cached synthesis of the opening script,
	// so redelivered opening webhooks reuse it instead of re-synthesizing.
	ScriptAudioID string `json:"-"`
}

// LastRole returns the role of the most recent turn, or "" for an empty
// transcript.
func (c *CallContext) LastRole() TurnRole {
	if len(c.Transcript) == 0 {
		return ""
	}
	return c.Transcript[len(c.Transcript)-1].Role
}

// CallStatus mirrors the telephony provider's call lifecycle values.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

// IsTerminal reports whether the status ends the call lifecycle.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusBusy,
		CallStatusNoAnswer, CallStatusCanceled:
		return true
	}
	return false
}

// CallOutcome is the classifier's verdict on a completed transcript.
// It is derived on demand and never persisted.
type CallOutcome string

const (
	OutcomeInterested    CallOutcome = "interested"
	OutcomeNotInterested CallOutcome = "not_interested"
	OutcomeUnreachable   CallOutcome = "unreachable"
)

// ParseOutcome coerces a classifier response to a valid outcome. Anything
// outside the three known literals is treated as unreachable.
func ParseOutcome(s string) CallOutcome {
	switch CallOutcome(s) {
	case OutcomeInterested, OutcomeNotInterested, OutcomeUnreachable:
		return CallOutcome(s)
	}
	return OutcomeUnreachable
}

// CallRequest is the inbound call-placement payload.
type CallRequest struct {
	PhoneNumber string `json:"phone_number"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address,omitempty"`
	Category    string `json:"category,omitempty"`
	Website     string `json:"website,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// PlaceCallResult reports a successful call placement.
type PlaceCallResult struct {
	Success     bool   `json:"success"`
	CallSid     string `json:"call_sid"`
	ToNumber    string `json:"to_number"`
	CompanyName string `json:"company_name"`
	TestMode    bool   `json:"test_mode"`
}

// CallStatusInfo is the provider's view of a call, as returned by the
// status endpoint.
type CallStatusInfo struct {
	Status   CallStatus `json:"status"`
	Duration string     `json:"duration"`
}

// AudioCacheEntry is a synthesized payload awaiting playback. Entries are
// written once and evicted after their TTL; they are never updated.
type AudioCacheEntry struct {
	ID        string
	Data      []byte
	CreatedAt time.Time
}
