package call

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/observability/telemetry"
	"github.com/seu-repo/voxdial/internal/ports"
)

// ErrInvalidRequest is returned when required placement fields are missing.
var ErrInvalidRequest = errors.New("phone_number and company_name are required")

// Service places outbound calls: it normalizes the destination, builds
// the per-call context, asks the telephony provider to dial, and tracks
// which call SIDs are currently in flight.
type Service struct {
	provider   ports.TelephonyProvider
	store      ports.ContextStore
	webhookURL string
	testNumber string
	log        *zap.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewService creates the placement service. When testNumber is non-empty
// every call is silently redirected to it; the requested number is kept
// in logs for traceability but never dialed.
func NewService(provider ports.TelephonyProvider, store ports.ContextStore, webhookURL, testNumber string, log *zap.Logger) *Service {
	return &Service{
		provider:   provider,
		store:      store,
		webhookURL: webhookURL,
		testNumber: testNumber,
		log:        log,
		active:     make(map[string]struct{}),
	}
}

var _ ports.CallService = (*Service)(nil)

// PlaceCall validates and normalizes the request, originates the call,
// and seeds the call context with the opening script as turn 0. Provider
// and credential failures surface before any context is created, so a
// failed placement never leaves state behind.
func (s *Service) PlaceCall(ctx context.Context, req *domain.CallRequest) (*domain.PlaceCallResult, error) {
	if req.PhoneNumber == "" || req.CompanyName == "" {
		return nil, ErrInvalidRequest
	}

	testMode := s.testNumber != ""
	dialNumber := req.PhoneNumber
	if testMode {
		dialNumber = s.testNumber
		s.log.Info("Test mode: redirecting call",
			zap.String("requested_number", req.PhoneNumber),
			zap.String("test_number", s.testNumber),
			zap.String("company", req.CompanyName),
		)
	}
	normalized := NormalizePhone(dialNumber)

	script := GenerateScript(req.CompanyName, req.Category, req.Address)

	callSid, err := s.provider.CreateCall(ctx, normalized, s.webhookURL)
	if err != nil {
		return nil, err
	}

	s.store.Create(callSid, &domain.CallContext{
		CompanyName: req.CompanyName,
		Category:    req.Category,
		Address:     req.Address,
		Summary:     req.Summary,
		Website:     req.Website,
		Script:      script,
		Transcript:  []domain.Turn{{Role: domain.RoleAgent, Text: script}},
	})

	s.mu.Lock()
	s.active[callSid] = struct{}{}
	s.mu.Unlock()

	telemetry.CallsPlacedTotal.WithLabelValues(boolLabel(testMode)).Inc()
	telemetry.ActiveCalls.Set(float64(s.activeCount()))

	return &domain.PlaceCallResult{
		Success:     true,
		CallSid:     callSid,
		ToNumber:    normalized,
		CompanyName: req.CompanyName,
		TestMode:    testMode,
	}, nil
}

// ActiveCalls returns the SIDs currently believed to be in flight.
func (s *Service) ActiveCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sids := make([]string, 0, len(s.active))
	for sid := range s.active {
		sids = append(sids, sid)
	}
	sort.Strings(sids)
	return sids
}

// ReleaseCall drops a SID from in-flight tracking, typically after a
// terminal status observation. Unknown SIDs are no-ops.
func (s *Service) ReleaseCall(callSid string) {
	s.mu.Lock()
	delete(s.active, callSid)
	s.mu.Unlock()
	telemetry.ActiveCalls.Set(float64(s.activeCount()))
}

// Reset force-clears all in-flight tracking.
func (s *Service) Reset() {
	s.mu.Lock()
	s.active = make(map[string]struct{})
	s.mu.Unlock()
	telemetry.ActiveCalls.Set(0)
}

func (s *Service) activeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
