package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "voxdial server URL")
	toNumber  = flag.String("to", "", "Destination phone number (required)")
	company   = flag.String("company", "", "Company name (required)")
	category  = flag.String("category", "", "Business category")
	address   = flag.String("address", "", "Business address")
	website   = flag.String("website", "", "Business website")
	summary   = flag.String("summary", "", "Business summary")
	interval  = flag.Duration("interval", 3*time.Second, "Status poll interval")
	timeout   = flag.Duration("timeout", 5*time.Minute, "Give up waiting after this long")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *toNumber == "" || *company == "" {
		fmt.Fprintln(os.Stderr, "both -to and -company are required")
		flag.Usage()
		os.Exit(2)
	}

	dialer := &Dialer{
		baseURL: strings.TrimRight(*serverURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}

	result, err := dialer.PlaceCall(&domain.CallRequest{
		PhoneNumber: *toNumber,
		CompanyName: *company,
		Category:    *category,
		Address:     *address,
		Website:     *website,
		Summary:     *summary,
	})
	if err != nil {
		logger.Fatal("Failed to place call", zap.Error(err))
	}

	fmt.Printf("Call placed: sid=%s to=%s testMode=%v\n", result.CallSid, result.ToNumber, result.TestMode)

	status, err := dialer.WaitForCompletion(result.CallSid, *interval, *timeout)
	if err != nil {
		logger.Fatal("Failed waiting for call to finish", zap.Error(err))
	}
	fmt.Printf("Call finished: status=%s duration=%ss\n", status.Status, status.Duration)

	transcript, err := dialer.FetchTranscript(result.CallSid)
	if err != nil {
		logger.Fatal("Failed to fetch transcript", zap.Error(err))
	}

	fmt.Printf("\nTranscript for %s:\n", transcript.CompanyName)
	for _, turn := range transcript.Transcript {
		fmt.Printf("  [%s] %s\n", turn.Role, turn.Text)
	}
	if transcript.Classification != nil {
		fmt.Printf("\nClassification: %s\n", *transcript.Classification)
	} else {
		fmt.Println("\nClassification: n/a (not enough conversation)")
	}
}

// Dialer drives a single call through the HTTP API: place, poll the
// status until the provider reports a terminal state, then fetch the
// transcript and its classification.
type Dialer struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

type transcriptResponse struct {
	CompanyName    string              `json:"company_name"`
	Transcript     []domain.Turn       `json:"transcript"`
	Classification *domain.CallOutcome `json:"classification"`
}

func (d *Dialer) PlaceCall(req *domain.CallRequest) (*domain.PlaceCallResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var result domain.PlaceCallResult
	if err := d.doJSON(http.MethodPost, "/api/v1/calls", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForCompletion polls the status endpoint until a terminal status or
// the timeout elapses. There is no push channel from the provider side,
// so the consumer owns the polling loop.
func (d *Dialer) WaitForCompletion(callSid string, interval, timeout time.Duration) (*domain.CallStatusInfo, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var info domain.CallStatusInfo
		if err := d.doJSON(http.MethodGet, "/api/v1/calls/"+callSid+"/status", nil, &info); err != nil {
			return nil, err
		}
		d.log.Info("Poll", zap.String("call_sid", callSid), zap.String("status", string(info.Status)))

		if info.Status.IsTerminal() {
			return &info, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("call %s still %s after %s", callSid, info.Status, timeout)
		}
		<-ticker.C
	}
}

func (d *Dialer) FetchTranscript(callSid string) (*transcriptResponse, error) {
	var transcript transcriptResponse
	if err := d.doJSON(http.MethodGet, "/api/v1/calls/"+callSid+"/transcript", nil, &transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

func (d *Dialer) doJSON(method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, d.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}
