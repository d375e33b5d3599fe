// Package theme stores the user's colour-scheme preference.
package theme

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// Mode is a colour-scheme preference.
type Mode string

const (
	Light  Mode = "light"
	Dark   Mode = "dark"
	System Mode = "system"
)

// Validate checks if the Mode is a valid enum value.
func (m Mode) Validate() error {
	switch m {
	case Light, Dark, System:
		return nil
	default:
		return fmt.Errorf("unknown theme: %q (expected light, dark or system)", m)
	}
}

// Resolve turns a preference into the scheme actually shown.
func Resolve(m Mode, systemPrefersDark bool) Mode {
	if m != System {
		return m
	}
	if systemPrefersDark {
		return Dark
	}
	return Light
}

// Preferences persists the theme as a bare string under its key.
type Preferences struct {
	store kvstore.Store
}

func NewPreferences(store kvstore.Store) *Preferences {
	return &Preferences{store: store}
}

// Get returns the stored mode. Missing or unrecognised values read as System.
func (p *Preferences) Get(ctx context.Context) (Mode, error) {
	raw, err := p.store.Get(ctx, kvstore.ThemeKey)
	if kvstore.IsNotFound(err) {
		return System, nil
	}
	if err != nil {
		return System, fmt.Errorf("failed to read theme: %w", err)
	}
	m := Mode(strings.TrimSpace(string(raw)))
	if m.Validate() != nil {
		return System, nil
	}
	return m, nil
}

func (p *Preferences) Set(ctx context.Context, m Mode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := p.store.Set(ctx, kvstore.ThemeKey, []byte(m)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
