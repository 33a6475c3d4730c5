// Package repository persists the combined catalog and ledger state as a
// single snapshot. Every save overwrites the previous snapshot wholesale.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// Gateway loads and saves snapshots.
type Gateway interface {
	// Load returns the last saved state. It returns ErrNoSnapshot when
	// nothing was saved and ErrCorruptSnapshot when the data is unusable.
	Load(ctx context.Context) (model.State, error)
	// Save replaces the stored snapshot with state.
	Save(ctx context.Context, state model.State) error
	// Close releases the underlying storage.
	Close() error
}

// snapshot mirrors model.State with a pointer for games so a missing list
// can be told apart from an empty one.
type snapshot struct {
	Games     *[]model.Game  `json:"games"`
	Faculties []string       `json:"faculties"`
	Results   []model.Result `json:"results"`
}

// encode renders state as indented JSON.
func encode(state model.State) ([]byte, error) {
	if state.Games == nil {
		state.Games = []model.Game{}
	}
	if state.Faculties == nil {
		state.Faculties = []string{}
	}
	if state.Results == nil {
		state.Results = []model.Result{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %v", ErrPersistence, err)
	}
	return data, nil
}

func decode(data []byte) (model.State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.State{}, fmt.Errorf("%w: empty snapshot", ErrCorruptSnapshot)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Games == nil {
		return model.State{}, fmt.Errorf("%w: games missing", ErrCorruptSnapshot)
	}
	state := model.State{
		Games:     *snap.Games,
		Faculties: snap.Faculties,
		Results:   snap.Results,
	}
	if state.Results == nil {
		state.Results = []model.Result{}
	}
	return state, nil
}
