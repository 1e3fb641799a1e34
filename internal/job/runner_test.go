package job

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/lexicall/internal/api"
	"codeberg.org/snonux/lexicall/internal/notify"
)

// fakeBackend scripts a job: SubmitJob returns the first status, each GetJob
// advances through the remaining sequence and sticks on the last entry.
type fakeBackend struct {
	mu        sync.Mutex
	sequence  []api.JobStatus
	position  int
	pollErrs  map[int]error // poll number (1-based) -> error instead of a status
	submitErr error
	polls     int
}

func (f *fakeBackend) SubmitJob(ctx context.Context, operation string, params any) (*api.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	status := f.sequence[0]
	f.position = 1
	return &status, nil
}

func (f *fakeBackend) GetJob(ctx context.Context, jobID string) (*api.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if err, ok := f.pollErrs[f.polls]; ok {
		return nil, err
	}
	if f.position >= len(f.sequence) {
		status := f.sequence[len(f.sequence)-1]
		return &status, nil
	}
	status := f.sequence[f.position]
	f.position++
	return &status, nil
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func fastRunner(backend Backend, hub *notify.Hub, opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithPollInterval(time.Millisecond),
		WithDeadlineFloor(2 * time.Second),
	}
	return NewRunner(backend, hub, append(base, opts...)...)
}

func statusTransitions(hub *notify.Hub) (*[]notify.Status, func(notify.Record)) {
	var mu sync.Mutex
	transitions := &[]notify.Status{}
	return transitions, func(rec notify.Record) {
		mu.Lock()
		defer mu.Unlock()
		*transitions = append(*transitions, rec.Status)
	}
}

func TestRunSuccessEndToEnd(t *testing.T) {
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusPending},
		{JobID: "j1", Status: api.StatusRunning},
		{JobID: "j1", Status: api.StatusRunning},
		{JobID: "j1", Status: api.StatusSucceeded, Result: json.RawMessage(`{"lemma":"alpha"}`)},
	}}
	hub := notify.NewHub()
	transitions, onChange := statusTransitions(hub)
	hub.SetOnChange(onChange)

	var result json.RawMessage
	var resultCalls int
	err := fastRunner(backend, hub).Run(context.Background(), "generate_pack", nil, Options{
		Title: "Generating pack",
		OnResult: func(r json.RawMessage) {
			resultCalls++
			result = r
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if resultCalls != 1 {
		t.Errorf("Expected OnResult to fire exactly once, got %d", resultCalls)
	}
	var decoded struct {
		Lemma string `json:"lemma"`
	}
	if err := json.Unmarshal(result, &decoded); err != nil || decoded.Lemma != "alpha" {
		t.Errorf("Caller did not receive the job result: %s", string(result))
	}

	// progress -> success, exactly one finalizing transition.
	if len(*transitions) != 2 || (*transitions)[0] != notify.StatusProgress || (*transitions)[1] != notify.StatusSuccess {
		t.Errorf("Unexpected notification transitions: %v", *transitions)
	}
}

func TestRunJobFailureSurfacesBackendMessage(t *testing.T) {
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusRunning},
		{JobID: "j1", Status: api.StatusFailed, Error: "model refused the prompt"},
	}}
	hub := notify.NewHub()

	err := fastRunner(backend, hub).Run(context.Background(), "generate_pack", nil, Options{Title: "Generating pack"})

	var failed *FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Expected FailedError, got %v", err)
	}
	if failed.Message != "model refused the prompt" {
		t.Errorf("Backend message not surfaced verbatim: %q", failed.Message)
	}

	records := hub.Records()
	if len(records) != 1 || records[0].Status != notify.StatusError {
		t.Fatalf("Expected one error notification, got %+v", records)
	}
	if records[0].Message != "model refused the prompt" {
		t.Errorf("Notification message should be the backend error, got %q", records[0].Message)
	}
}

func TestRunDeadlineExceeded(t *testing.T) {
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusRunning},
	}}
	hub := notify.NewHub()
	runner := fastRunner(backend, hub, WithPollInterval(5*time.Millisecond), WithDeadlineFloor(40*time.Millisecond))

	err := runner.Run(context.Background(), "generate_pack", nil, Options{Title: "Generating pack"})
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("Expected ErrDeadlineExceeded, got %v", err)
	}

	records := hub.Records()
	if len(records) != 1 || records[0].Status != notify.StatusError {
		t.Fatalf("Expected one error notification, got %+v", records)
	}
	if want := "Generating pack timed out — the job may still be running, check back later"; records[0].Message != want {
		t.Errorf("Expected the still-running message, got %q", records[0].Message)
	}
}

func TestDeadlineFloorOverridesShortCallerTimeout(t *testing.T) {
	runner := NewRunner(nil, notify.NewHub())
	now := time.Now()

	deadline := runner.Deadline(now, 5*time.Second)
	if got := deadline.Sub(now); got != DefaultDeadlineFloor {
		t.Errorf("A 5s caller timeout must be floored to %v, got %v", DefaultDeadlineFloor, got)
	}

	deadline = runner.Deadline(now, 20*time.Minute)
	if got := deadline.Sub(now); got != 20*time.Minute {
		t.Errorf("A caller timeout above the floor must win, got %v", got)
	}
}

func TestRunCancellationLeavesNotificationInProgress(t *testing.T) {
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusRunning},
	}}
	hub := notify.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fastRunner(backend, hub).Run(ctx, "generate_pack", nil, Options{Title: "Generating pack"})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	cancel() // idempotent

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	// Cancellation is not an error: the notification stays in progress.
	records := hub.Records()
	if len(records) != 1 || records[0].Status != notify.StatusProgress {
		t.Errorf("Cancellation must not finalize the notification: %+v", records)
	}
}

func TestRunCancelAsError(t *testing.T) {
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusRunning},
	}}
	hub := notify.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fastRunner(backend, hub).Run(ctx, "generate_pack", nil, Options{
			Title:         "Generating pack",
			CancelAsError: true,
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	records := hub.Records()
	if len(records) != 1 || records[0].Status != notify.StatusError {
		t.Fatalf("Expected an error notification under CancelAsError, got %+v", records)
	}
}

func TestRunSubmitFailure(t *testing.T) {
	backend := &fakeBackend{submitErr: &api.APIError{StatusCode: 502, Message: "bad gateway"}}
	hub := notify.NewHub()

	err := fastRunner(backend, hub).Run(context.Background(), "generate_pack", nil, Options{Title: "Generating pack"})
	if err == nil {
		t.Fatal("Expected submit failure to propagate")
	}

	records := hub.Records()
	if len(records) != 1 || records[0].Status != notify.StatusError {
		t.Fatalf("Expected an error notification, got %+v", records)
	}
	if records[0].Message != "bad gateway" {
		t.Errorf("Expected the backend message, got %q", records[0].Message)
	}
}

func TestRunToleratesTransientPollFailures(t *testing.T) {
	backend := &fakeBackend{
		sequence: []api.JobStatus{
			{JobID: "j1", Status: api.StatusRunning},
			{JobID: "j1", Status: api.StatusSucceeded},
		},
		pollErrs: map[int]error{1: errors.New("gateway hiccup")},
	}
	hub := notify.NewHub()

	err := fastRunner(backend, hub).Run(context.Background(), "generate_pack", nil, Options{Title: "Generating pack"})
	if err != nil {
		t.Fatalf("A single failed poll must not abort the session: %v", err)
	}

	records := hub.Records()
	if records[0].Status != notify.StatusSuccess {
		t.Errorf("Expected success after transient poll failure, got %s", records[0].Status)
	}
}

func TestObservedStatusNeverRegresses(t *testing.T) {
	// A late pending response arrives after running was observed.
	backend := &fakeBackend{sequence: []api.JobStatus{
		{JobID: "j1", Status: api.StatusRunning},
		{JobID: "j1", Status: api.StatusPending},
		{JobID: "j1", Status: api.StatusSucceeded},
	}}
	hub := notify.NewHub()

	err := fastRunner(backend, hub).Run(context.Background(), "generate_pack", nil, Options{Title: "Generating pack"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if backend.pollCount() < 2 {
		t.Errorf("Expected polling to continue past the regressed status, got %d polls", backend.pollCount())
	}
}

func TestStatusRanking(t *testing.T) {
	if !api.StatusSucceeded.AtLeast(api.StatusRunning) {
		t.Error("succeeded must rank at least running")
	}
	if api.StatusPending.AtLeast(api.StatusRunning) {
		t.Error("pending must not rank at least running")
	}
	if !api.StatusFailed.AtLeast(api.StatusSucceeded) {
		t.Error("terminal states share the top rank")
	}
	if !api.StatusRunning.AtLeast(api.StatusRunning) {
		t.Error("a status ranks at least itself")
	}
}
