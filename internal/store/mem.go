package store

import "github.com/sweeney/mailbox-sensor/internal/logic"

// MemStore is an in-memory Store for tests.
type MemStore struct {
	// State is returned by Load and replaced by Commit.
	State logic.RetainedState

	// Commits records every committed state in order.
	Commits []logic.RetainedState

	// LoadError, if set, is returned by Load alongside a cold start.
	LoadError error

	// CommitError, if set, is returned by Commit without storing.
	CommitError error
}

// NewMemStore creates a MemStore holding state.
func NewMemStore(state logic.RetainedState) *MemStore {
	return &MemStore{State: state}
}

// Load returns the held state.
func (m *MemStore) Load() (logic.RetainedState, error) {
	if m.LoadError != nil {
		return logic.ColdStart(), m.LoadError
	}
	return m.State, nil
}

// Commit replaces the held state and records it.
func (m *MemStore) Commit(state logic.RetainedState) error {
	if m.CommitError != nil {
		return m.CommitError
	}
	m.State = state
	m.Commits = append(m.Commits, state)
	return nil
}

// Last returns the most recent commit, or false if there was none.
func (m *MemStore) Last() (logic.RetainedState, bool) {
	if len(m.Commits) == 0 {
		return logic.RetainedState{}, false
	}
	return m.Commits[len(m.Commits)-1], true
}
