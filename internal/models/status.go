// internal/models/status.go

package models

// Status is a point-in-time snapshot of a remote device's hardware and
// software state. It is constructed fresh on every probe and never mutated
// afterwards; a re-probe supersedes the old snapshot, and WithComponent
// returns a superseding copy rather than editing in place.
type Status struct {
	Processor           string
	PathVariable        string
	HasRequiredTools    bool
	MissingTools        []string
	HasDebugger         bool
	InstalledComponents []Component
	BoardModel          string
	BoardRevision       string
	Architecture        Architecture
	Supported           bool
}

// HasComponent reports whether a component with the given name is already
// installed on the device. The install idempotence check keys on name only.
func (s *Status) HasComponent(name string) bool {
	for _, c := range s.InstalledComponents {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// WithComponent returns a superseding snapshot that additionally lists the
// given component as installed. The receiver is left untouched.
func (s *Status) WithComponent(c Component) *Status {
	next := *s
	next.InstalledComponents = make([]Component, 0, len(s.InstalledComponents)+1)
	next.InstalledComponents = append(next.InstalledComponents, s.InstalledComponents...)
	next.InstalledComponents = append(next.InstalledComponents, c)
	return &next
}

// WithDebugger returns a superseding snapshot with the debugger flag set.
func (s *Status) WithDebugger() *Status {
	next := *s
	next.HasDebugger = true
	return &next
}
