// Package device holds the light's current color and is the only path that
// drives its output.
package device

import (
	"sync"

	"github.com/gloworm-vision/colorlight/color"
)

// Output applies a color to physical hardware.
type Output interface {
	Apply(c color.Color) error
}

// State synchronizes access to the current color and the output showing it.
// One lock covers both so a reader never sees a color that hasn't been sent
// to the output.
type State struct {
	mu     sync.Mutex
	color  color.Color
	output Output
}

// New applies the initial color and returns the state holding it.
func New(output Output, initial color.Color) (*State, error) {
	s := &State{output: output}
	if err := s.Set(initial); err != nil {
		return nil, err
	}

	return s, nil
}

// Get returns the most recently set color.
func (s *State) Get() color.Color {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.color
}

// Set records the color and applies it to the output. The color stays
// recorded even when applying fails, and the output may then be partially
// updated.
func (s *State) Set(c color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.color = c
	return s.output.Apply(c)
}
