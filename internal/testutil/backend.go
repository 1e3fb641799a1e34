// Package testutil provides a fake lexicall backend for tests, implementing
// the same JSON-over-HTTP contract as the real one.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"codeberg.org/snonux/lexicall/internal/api"
	"codeberg.org/snonux/lexicall/internal/pack"
)

// FakeBackend serves scripted job sequences, lookup results and packs
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	jobScripts  [][]api.JobStatus // consumed per submission, in order
	jobs        map[string]*jobState
	lookups     map[string]api.LookupResult
	packs       map[string]*pack.VocabPack
	lookupCalls map[string]int
}

type jobState struct {
	sequence []api.JobStatus
	position int
}

// NewFakeBackend starts a fake backend server. Callers must Close it.
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		jobs:        make(map[string]*jobState),
		lookups:     make(map[string]api.LookupResult),
		packs:       make(map[string]*pack.VocabPack),
		lookupCalls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", b.handleSubmit)
	mux.HandleFunc("GET /jobs/{id}", b.handlePoll)
	mux.HandleFunc("GET /lookup/{key}", b.handleLookup)
	mux.HandleFunc("GET /packs/{id}", b.handleGetPack)
	b.Server = httptest.NewServer(mux)
	return b
}

// Close shuts the server down
func (b *FakeBackend) Close() {
	b.Server.Close()
}

// URL returns the backend base URL
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// ScriptJob queues a job sequence for the next submission. The first status
// is returned by the submit call, each poll advances through the rest and
// sticks on the last entry.
func (b *FakeBackend) ScriptJob(sequence ...api.JobStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobScripts = append(b.jobScripts, sequence)
}

// SetLookup registers a lookup result for a key
func (b *FakeBackend) SetLookup(key string, result api.LookupResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookups[key] = result
}

// SetPack registers a pack for the direct entity endpoint
func (b *FakeBackend) SetPack(p *pack.VocabPack) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.packs[p.ID] = p
}

// LookupCalls returns how many lookup requests were served for a key
func (b *FakeBackend) LookupCalls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookupCalls[key]
}

func (b *FakeBackend) handleSubmit(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.jobScripts) == 0 {
		writeError(w, http.StatusInternalServerError, "no job scripted")
		return
	}
	sequence := b.jobScripts[0]
	b.jobScripts = b.jobScripts[1:]

	b.jobs[sequence[0].JobID] = &jobState{sequence: sequence, position: 1}
	writeJSON(w, sequence[0])
}

func (b *FakeBackend) handlePoll(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.jobs[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	if state.position >= len(state.sequence) {
		writeJSON(w, state.sequence[len(state.sequence)-1])
		return
	}
	status := state.sequence[state.position]
	state.position++
	writeJSON(w, status)
}

func (b *FakeBackend) handleLookup(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(r.PathValue("key"))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookupCalls[key]++

	result, ok := b.lookups[key]
	if !ok {
		// Absence is a well-formed response, not an error.
		writeJSON(w, api.LookupResult{Found: false})
		return
	}
	writeJSON(w, result)
}

func (b *FakeBackend) handleGetPack(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.packs[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "no such pack")
		return
	}
	writeJSON(w, p)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
