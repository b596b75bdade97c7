package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures every reporter transition in order.
type recorder struct {
	opens  int
	closes int
	events []string
}

func (r *recorder) Open(description string) {
	r.opens++
	r.events = append(r.events, "open:"+description)
}

func (r *recorder) Update(description string) {
	r.events = append(r.events, "update:"+description)
}

func (r *recorder) Close() {
	r.closes++
	r.events = append(r.events, "close")
}

func TestWithProgressNested(t *testing.T) {
	rec := &recorder{}
	c := NewCoordinator(rec)

	err := c.WithProgress("connecting", func() error {
		return c.WithProgress("probing", func() error {
			return c.WithProgress("installing", func() error {
				assert.Equal(t, 3, c.Depth())
				return nil
			})
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.opens, "surface opens exactly once per root")
	assert.Equal(t, 1, rec.closes, "surface closes exactly once per root")
	assert.Zero(t, c.Depth())

	// Each pop restores the description of the still-open outer frame.
	assert.Equal(t, []string{
		"open:connecting",
		"update:probing",
		"update:installing",
		"update:probing",
		"update:connecting",
		"close",
	}, rec.events)
}

func TestWithProgressErrorStillPops(t *testing.T) {
	rec := &recorder{}
	c := NewCoordinator(rec)
	boom := errors.New("boom")

	err := c.WithProgress("outer", func() error {
		return c.WithProgress("inner", func() error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom, "the error passes through unchanged")
	assert.Zero(t, c.Depth())
	assert.Equal(t, 1, rec.closes, "the surface closes on the error path too")
}

func TestWithProgressReopensAfterDrain(t *testing.T) {
	rec := &recorder{}
	c := NewCoordinator(rec)

	require.NoError(t, c.WithProgress("first run", func() error { return nil }))
	require.NoError(t, c.WithProgress("second run", func() error { return nil }))

	assert.Equal(t, 2, rec.opens, "a fresh root after drain opens a fresh surface")
	assert.Equal(t, 2, rec.closes)
}

func TestWriterReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriterReporter(&buf)

	r.Open("connecting")
	r.Update("probing")
	r.Close()

	assert.Equal(t, "connecting\nprobing\n", buf.String())
}
