// Package session holds the per-visitor state of the calculators: the class
// standing wizard and the assistant conversation. Handlers never keep this in
// memory themselves; they load it from a Store, change it, and save it back.
package session

import (
	"context"
	"time"

	"gradecalc/internal/assistant"
	"gradecalc/internal/grading"
)

type State struct {
	ID        string            `json:"id"`
	Wizard    grading.Wizard    `json:"wizard"`
	History   assistant.History `json:"history"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewState returns the state of a session nobody has touched yet.
func NewState(id string, greeting string) State {
	return State{
		ID:        id,
		Wizard:    grading.NewWizard(),
		History:   assistant.Cleared(greeting),
		UpdatedAt: time.Now().UTC(),
	}
}

func (s State) clone() State {
	s.Wizard.Results = append([]grading.CategoryResult(nil), s.Wizard.Results...)
	s.History.Messages = append([]assistant.Message(nil), s.History.Messages...)
	return s
}

// Store loads and saves session state.
//
// Load returns a fresh state for unknown IDs. Update applies fn to the current
// state and saves the result atomically; when fn returns an error nothing is
// saved and the error is returned unchanged.
type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Update(ctx context.Context, id string, fn func(*State) error) (State, error)
	Delete(ctx context.Context, id string) error
}
