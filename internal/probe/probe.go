// internal/probe/probe.go

// Package probe runs read-only introspection against a live session and
// builds the Status snapshot the rest of the pipeline consumes.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pideploy/internal/install"
	"pideploy/internal/models"
	"pideploy/internal/sshx"
)

// requiredTools are the utility binaries an install needs on the device.
var requiredTools = []string{"tar", "gzip", "ssh-keygen"}

// supportedModelPrefixes is the board allow-list. A model outside the list
// still probes successfully but is flagged unsupported; the policy decision
// belongs to the caller.
var supportedModelPrefixes = []string{"Raspberry Pi"}

// Prober collects a Status snapshot from a device. Probing is read-only:
// nothing on the device changes.
type Prober struct {
	logger *slog.Logger
}

// NewProber builds a prober.
func NewProber(logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{logger: logger}
}

// Probe builds a fresh Status snapshot. Snapshots are never updated in
// place; re-probing supersedes the previous one.
func (p *Prober) Probe(ctx context.Context, sess sshx.Session) (*models.Status, error) {
	processor, err := sess.Run(ctx, "uname -m")
	if err != nil {
		return nil, fmt.Errorf("failed to read processor identifier: %w", err)
	}

	// The model file is NUL-terminated; absent entirely on non-devicetree
	// systems.
	boardModel, _ := sess.Run(ctx, "tr -d '\\0' < /proc/device-tree/model 2>/dev/null || true")
	revision, _ := sess.Run(ctx, "awk '/^Revision/ {print $3}' /proc/cpuinfo")

	pathValue, err := sess.Run(ctx, "echo \"$PATH\"")
	if err != nil {
		return nil, fmt.Errorf("failed to read PATH: %w", err)
	}

	var missingTools []string
	for _, tool := range requiredTools {
		if _, err := sess.Run(ctx, fmt.Sprintf("command -v %s", tool)); err != nil {
			p.logger.Debug("required tool missing", "tool", tool, "device", sess.Name())
			missingTools = append(missingTools, tool)
		}
	}

	components, hasDebugger, err := p.listInstalled(ctx, sess)
	if err != nil {
		return nil, err
	}

	arch := Classify(processor)
	supported := isModelSupported(boardModel)

	if rev, ok := models.LookupBoard(revision); ok {
		p.logger.Debug("board identified",
			"model", rev.Model, "ram", rev.RAM, "manufacturer", rev.Manufacturer)
	}

	status := &models.Status{
		Processor:           processor,
		PathVariable:        pathValue,
		HasRequiredTools:    len(missingTools) == 0,
		MissingTools:        missingTools,
		HasDebugger:         hasDebugger,
		InstalledComponents: components,
		BoardModel:          boardModel,
		BoardRevision:       revision,
		Architecture:        arch,
		Supported:           supported,
	}

	p.logger.Info("device probed",
		"device", sess.Name(),
		"processor", processor,
		"architecture", arch.String(),
		"board", boardModel,
		"supported", supported,
		"installed", len(components))

	return status, nil
}

// listInstalled reads the component directories under the well-known install
// root, including the debugger subdirectory.
func (p *Prober) listInstalled(ctx context.Context, sess sshx.Session) ([]models.Component, bool, error) {
	rootListing, err := sess.Run(ctx,
		fmt.Sprintf("ls -1 %s 2>/dev/null || true", install.Root))
	if err != nil {
		return nil, false, fmt.Errorf("failed to list install root: %w", err)
	}

	var components []models.Component
	for _, entry := range splitLines(rootListing) {
		if entry == install.DebuggerSubdir {
			continue
		}
		if c, ok := ParseComponentDir(entry); ok {
			components = append(components, c)
		}
	}

	debuggerListing, err := sess.Run(ctx,
		fmt.Sprintf("ls -1 %s 2>/dev/null || true", install.DebuggerRoot))
	if err != nil {
		return nil, false, fmt.Errorf("failed to list debugger root: %w", err)
	}
	hasDebugger := false
	for _, entry := range splitLines(debuggerListing) {
		if c, ok := ParseComponentDir(entry); ok {
			components = append(components, c)
			hasDebugger = true
		}
	}

	return components, hasDebugger, nil
}

func isModelSupported(model string) bool {
	for _, prefix := range supportedModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
