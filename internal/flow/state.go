package flow

import "fmt"

// State is the current step of the install flow
type State int

const (
	StateInitial State = iota
	StateLoadingManifest
	StateReadyToInstall
	StateInstalling
	StateInstalled
	StateFailed
	StateNotAllowed
)

var stateNames = [...]string{
	StateInitial:         "initial",
	StateLoadingManifest: "loading-manifest",
	StateReadyToInstall:  "ready-to-install",
	StateInstalling:      "installing",
	StateInstalled:       "installed",
	StateFailed:          "failed",
	StateNotAllowed:      "not-allowed",
}

// AllStates returns every defined state in declaration order
func AllStates() []State {
	return []State{
		StateInitial,
		StateLoadingManifest,
		StateReadyToInstall,
		StateInstalling,
		StateInstalled,
		StateFailed,
		StateNotAllowed,
	}
}

// Valid reports whether s is one of the defined states
func (s State) Valid() bool {
	return s >= 0 && int(s) < len(stateNames)
}

// Name returns the canonical name of the state.
// Any value outside the defined set yields *UnknownStateError.
func (s State) Name() (string, error) {
	if !s.Valid() {
		return "", &UnknownStateError{State: s}
	}
	return stateNames[s], nil
}

// String implements fmt.Stringer
func (s State) String() string {
	name, err := s.Name()
	if err != nil {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return name
}

// Transient reports whether the state waits on an asynchronous operation
func (s State) Transient() bool {
	return s == StateLoadingManifest || s == StateInstalling
}
