package domain

import "time"

// RunStatus describes where a graph run stands.
type RunStatus string

const (
	RunActive    RunStatus = "active"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Snapshot is the persisted state of a graph run, written after every step
// so a run can be resumed from its last position.
type Snapshot struct {
	RunID     string         `json:"run_id"`
	GraphID   string         `json:"graph_id,omitempty"`
	NextNode  string         `json:"next_node,omitempty"`
	Steps     int            `json:"steps"`
	Status    RunStatus      `json:"status"`
	Store     map[string]any `json:"store"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSnapshot captures the current contents of store.
func NewSnapshot(runID, graphID string, store *Store) *Snapshot {
	return &Snapshot{
		RunID:     runID,
		GraphID:   graphID,
		Status:    RunActive,
		Store:     store.Snapshot(),
		UpdatedAt: time.Now(),
	}
}

// Clone returns a copy with its own Store map.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Store = make(map[string]any, len(s.Store))
	for k, v := range s.Store {
		c.Store[k] = v
	}
	return &c
}
