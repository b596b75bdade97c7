// internal/progress/reporter.go

package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// WriterReporter prints each displayed description as a plain line. It is
// the surface for non-interactive runs and for captured output.
type WriterReporter struct {
	w io.Writer
}

// NewWriterReporter builds a reporter over w.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Open(description string)   { fmt.Fprintln(r.w, description) }
func (r *WriterReporter) Update(description string) { fmt.Fprintln(r.w, description) }
func (r *WriterReporter) Close()                    {}

type updateMsg string

type closeMsg struct{}

// TeaReporter renders the active description with a spinner on stderr. Each
// Open starts a fresh program; Close quits it and waits for teardown so the
// terminal is restored before the caller continues.
type TeaReporter struct {
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTeaReporter builds an interactive spinner reporter.
func NewTeaReporter() *TeaReporter {
	return &TeaReporter{}
}

func (r *TeaReporter) Open(description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := spinnerModel{
		spinner: newSpinner(),
		message: description,
	}
	r.program = tea.NewProgram(m,
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
	)
	r.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(r.program, r.done)
}

func (r *TeaReporter) Update(description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(updateMsg(description))
	}
}

func (r *TeaReporter) Close() {
	r.mu.Lock()
	program, done := r.program, r.done
	r.program, r.done = nil, nil
	r.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(closeMsg{})
	<-done
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return s
}

type spinnerModel struct {
	spinner spinner.Model
	message string
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.message = string(msg)
		return m, nil
	case closeMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	return m.spinner.View() + " " + messageStyle.Render(m.message)
}
