package toolconfig

import "sync/atomic"

// Settings is the read-only view of the global persistence toggles.
type Settings interface {
	// ShouldSave reports whether values of the category are persisted.
	ShouldSave(t PropertyType) bool
	// ShouldLoadExamples reports whether new or reset properties start from
	// their example value.
	ShouldLoadExamples() bool
}

// StaticSettings is an immutable Settings snapshot.
type StaticSettings struct {
	SaveConfigurations  bool
	SaveInputs          bool
	SaveSensitiveInputs bool
	LoadExamples        bool
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() StaticSettings {
	return StaticSettings{
		SaveConfigurations:  true,
		SaveInputs:          true,
		SaveSensitiveInputs: false,
		LoadExamples:        true,
	}
}

// ShouldSave implements Settings.
func (s StaticSettings) ShouldSave(t PropertyType) bool {
	switch t {
	case TypeConfiguration:
		return s.SaveConfigurations
	case TypeInput:
		return s.SaveInputs
	case TypeSensitive:
		return s.SaveSensitiveInputs
	default:
		return false
	}
}

// ShouldLoadExamples implements Settings.
func (s StaticSettings) ShouldLoadExamples() bool {
	return s.LoadExamples
}

// AtomicSettings is a Settings whose snapshot can be swapped at runtime, for
// example when the user edits the preferences.
type AtomicSettings struct {
	current atomic.Pointer[StaticSettings]
}

// NewAtomicSettings creates live settings starting at initial.
func NewAtomicSettings(initial StaticSettings) *AtomicSettings {
	s := &AtomicSettings{}
	s.Store(initial)
	return s
}

// Load returns the current snapshot.
func (s *AtomicSettings) Load() StaticSettings {
	return *s.current.Load()
}

// Store replaces the current snapshot.
func (s *AtomicSettings) Store(next StaticSettings) {
	s.current.Store(&next)
}

// ShouldSave implements Settings.
func (s *AtomicSettings) ShouldSave(t PropertyType) bool {
	return s.Load().ShouldSave(t)
}

// ShouldLoadExamples implements Settings.
func (s *AtomicSettings) ShouldLoadExamples() bool {
	return s.Load().LoadExamples
}
