package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/observability/telemetry"
	"github.com/seu-repo/voxdial/internal/ports"
	"github.com/seu-repo/voxdial/internal/service/call"
)

// CallHandler exposes call placement, status, transcript, and session
// endpoints.
type CallHandler struct {
	svc        ports.CallService
	provider   ports.TelephonyProvider
	contexts   ports.ContextStore
	classifier ports.Classifier
	log        *zap.Logger
}

func NewCallHandler(svc ports.CallService, provider ports.TelephonyProvider, contexts ports.ContextStore, classifier ports.Classifier, log *zap.Logger) *CallHandler {
	return &CallHandler{
		svc:        svc,
		provider:   provider,
		contexts:   contexts,
		classifier: classifier,
		log:        log,
	}
}

// PlaceCall originates an outbound call.
func (h *CallHandler) PlaceCall(c *fiber.Ctx) error {
	var req domain.CallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	result, err := h.svc.PlaceCall(c.Context(), &req)
	if err != nil {
		if errors.Is(err, call.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}

	return c.JSON(result)
}

// GetStatus returns the provider's view of a call. Observing a terminal
// status releases the in-flight slot and starts the context's retention
// clock.
func (h *CallHandler) GetStatus(c *fiber.Ctx) error {
	callSid := c.Params("sid")

	info, err := h.provider.FetchCall(c.Context(), callSid)
	if err != nil {
		return err
	}

	if info.Status.IsTerminal() {
		h.contexts.MarkTerminal(callSid)
		h.svc.ReleaseCall(callSid)
	}

	return c.JSON(info)
}

// TranscriptResponse is the transcript endpoint payload. Classification
// is null for live calls and for transcripts too short to judge.
type TranscriptResponse struct {
	CompanyName    string              `json:"company_name"`
	Transcript     []domain.Turn       `json:"transcript"`
	Classification *domain.CallOutcome `json:"classification"`
}

// GetTranscript returns the stored transcript, classifying it unless the
// call is still live or nothing beyond the opening script was said.
func (h *CallHandler) GetTranscript(c *fiber.Ctx) error {
	callSid := c.Params("sid")

	cc, ok := h.contexts.Get(callSid)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "call not found"})
	}

	resp := TranscriptResponse{
		CompanyName: cc.CompanyName,
		Transcript:  cc.Transcript,
	}

	live := c.Query("live") == "true"
	if !live && len(cc.Transcript) > 1 {
		outcome := h.classifier.Classify(c.Context(), cc.CompanyName, cc.Transcript)
		telemetry.ClassificationsTotal.WithLabelValues(string(outcome)).Inc()
		resp.Classification = &outcome
		h.log.Info("Classified transcript",
			zap.String("call_sid", callSid),
			zap.String("outcome", string(outcome)),
		)
	}

	return c.JSON(resp)
}

// SessionResponse reports whether any calls are believed in flight.
type SessionResponse struct {
	Active   bool     `json:"active"`
	CallSids []string `json:"call_sids"`
}

// GetSession answers "is a call in flight right now".
func (h *CallHandler) GetSession(c *fiber.Ctx) error {
	sids := h.svc.ActiveCalls()
	return c.JSON(SessionResponse{Active: len(sids) > 0, CallSids: sids})
}

// ResetSession force-clears in-flight tracking so a stuck session never
// blocks new placements.
func (h *CallHandler) ResetSession(c *fiber.Ctx) error {
	h.svc.Reset()
	h.log.Info("Session reset")
	return c.JSON(fiber.Map{"success": true})
}
