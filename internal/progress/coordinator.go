// internal/progress/coordinator.go

// Package progress tracks nested long-running operations and surfaces one
// aggregated indicator for the whole stack.
package progress

import "sync"

// Reporter is the display surface behind a Coordinator. Exactly one surface
// is open at a time; Open and Close bracket the lifetime of a root
// operation, Update swaps the displayed message while the surface stays
// open.
type Reporter interface {
	Open(description string)
	Update(description string)
	Close()
}

// Coordinator keeps the stack of in-flight operation descriptions. The
// first push opens the surface, nested pushes update the displayed message
// while the outer frames stay recorded underneath, each pop restores the
// next-outer description, and the final pop closes the surface. Draining
// the stack and pushing again opens a fresh surface.
//
// All mutations are serialized under one mutex; reporter calls happen while
// it is held so the display observes transitions in stack order. The
// coordinator has no cancellation: operations run to completion or to an
// error.
type Coordinator struct {
	mu       sync.Mutex
	stack    []string
	reporter Reporter
}

// NewCoordinator builds a coordinator over a reporter.
func NewCoordinator(r Reporter) *Coordinator {
	return &Coordinator{reporter: r}
}

// WithProgress runs fn inside a named frame. The matching pop is guaranteed
// on every exit path, error included; the error is returned unchanged.
func (c *Coordinator) WithProgress(description string, fn func() error) error {
	c.push(description)
	defer c.pop()
	return fn()
}

// Depth reports the number of in-flight frames.
func (c *Coordinator) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stack)
}

func (c *Coordinator) push(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		c.reporter.Open(description)
	} else {
		c.reporter.Update(description)
	}
	c.stack = append(c.stack, description)
}

func (c *Coordinator) pop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	if len(c.stack) == 0 {
		c.reporter.Close()
		return
	}
	c.reporter.Update(c.stack[len(c.stack)-1])
}
