// Package notify implements the notification hub: a list of transient,
// user-visible status records for in-flight operations. The hub knows nothing
// about jobs or the network; operations create a record when they start and
// finalize it exactly once, and the UI renders whatever is in the list.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the display state of a notification record
type Status string

const (
	StatusProgress Status = "progress"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// Record is one user-visible status line
type Record struct {
	ID        string
	Title     string
	Message   string
	Status    Status
	Model     string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Input describes a new record. Status defaults to progress.
type Input struct {
	Title    string
	Message  string
	Status   Status
	Model    string
	Category string
}

// Patch is a partial update to an existing record. Empty fields are left
// unchanged.
type Patch struct {
	Title   string
	Message string
	Status  Status
}

// Hub holds the current notification records. Safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	records  map[string]*Record
	order    []string
	onChange func(Record)
}

// NewHub creates an empty notification hub
func NewHub() *Hub {
	return &Hub{
		records: make(map[string]*Record),
	}
}

// SetOnChange sets a callback invoked after every add or update. The callback
// receives a copy of the record and is called outside the hub's lock.
func (h *Hub) SetOnChange(fn func(Record)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Add creates a new record and returns its id immediately. The id is stable
// for the record's lifetime and used for later updates.
func (h *Hub) Add(in Input) string {
	rec := &Record{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Message:   in.Message,
		Status:    in.Status,
		Model:     in.Model,
		Category:  in.Category,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if rec.Status == "" {
		rec.Status = StatusProgress
	}

	h.mu.Lock()
	h.records[rec.ID] = rec
	h.order = append(h.order, rec.ID)
	fn := h.onChange
	snapshot := *rec
	h.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return rec.ID
}

// Update merges a patch into the record with the given id. Updating an
// unknown id is a no-op: the user may have dismissed the record while its
// operation was still running.
func (h *Hub) Update(id string, p Patch) {
	h.mu.Lock()
	rec, ok := h.records[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	if p.Title != "" {
		rec.Title = p.Title
	}
	if p.Message != "" {
		rec.Message = p.Message
	}
	if p.Status != "" {
		rec.Status = p.Status
	}
	rec.UpdatedAt = time.Now()
	fn := h.onChange
	snapshot := *rec
	h.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// Get returns a copy of the record with the given id
func (h *Hub) Get(id string) (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of all records in creation order
func (h *Hub) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, 0, len(h.order))
	for _, id := range h.order {
		if rec, ok := h.records[id]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// Remove deletes a record, typically on user dismissal. Later updates to the
// removed id become no-ops.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.records[id]; !ok {
		return
	}
	delete(h.records, id)
	for i, recordID := range h.order {
		if recordID == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
