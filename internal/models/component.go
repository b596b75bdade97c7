// internal/models/component.go

package models

import "fmt"

// Component is an installable unit on the remote device: the runtime SDK or
// the remote debugger. Immutable once constructed.
type Component struct {
	name    string
	version string
	arch    Architecture
}

// NewComponent builds a component record. Version is a full semantic version
// (major.minor.patch).
func NewComponent(name, version string, arch Architecture) Component {
	return Component{name: name, version: version, arch: arch}
}

func (c Component) Name() string               { return c.name }
func (c Component) Version() string            { return c.version }
func (c Component) Architecture() Architecture { return c.arch }

// DirName is the on-device directory name under the install root. Component
// names already carry their version ("sdk-6.0.101"), so the directory only
// appends the architecture. The probe parses installed components back out
// of this exact form.
func (c Component) DirName() string {
	return fmt.Sprintf("%s-%s", c.name, c.arch)
}

func (c Component) String() string {
	return c.DirName()
}
