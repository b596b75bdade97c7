// internal/install/installer.go

// Package install downloads, verifies, and idempotently installs resolved
// catalog items onto the remote device.
package install

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"pideploy/internal/catalog"
	"pideploy/internal/models"
	"pideploy/internal/pderr"
	"pideploy/internal/sshx"
)

// Remote directory layout. This contract is fixed for interoperability:
// runtime components live under Root, the debugger under its own
// subdirectory, and the shell profile exports point the runtime root
// variable at Root.
const (
	Root           = "/lib/pideploy"
	DebuggerSubdir = "vsdbg"
	DebuggerRoot   = Root + "/" + DebuggerSubdir

	// EnvRootVar is exported in the remote user's profile and in every
	// launched program's environment.
	EnvRootVar = "PIDEPLOY_ROOT"
)

const (
	// DownloadAttempts bounds the download/verify loop.
	DownloadAttempts = 3

	// DefaultRetryDelay is the fixed sleep between failed attempts.
	DefaultRetryDelay = 5 * time.Second
)

// Result reports what EnsureInstalled did.
type Result struct {
	// Component is the component the item installs.
	Component models.Component

	// AlreadyInstalled is true when the idempotence check short-circuited
	// and no network I/O happened.
	AlreadyInstalled bool

	// Status is the snapshot reflecting the install: a superseding copy on
	// a fresh install, the caller's own snapshot when nothing changed.
	Status *models.Status
}

// Installer reconciles a device's Status against resolved catalog items.
type Installer struct {
	downloader Downloader
	logger     *slog.Logger
	retryDelay time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewInstaller builds an installer with the given downloader.
func NewInstaller(downloader Downloader, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		downloader: downloader,
		logger:     logger,
		retryDelay: DefaultRetryDelay,
		sleep:      time.Sleep,
	}
}

// SetRetryDelay overrides the fixed inter-attempt delay.
func (i *Installer) SetRetryDelay(d time.Duration) {
	if d > 0 {
		i.retryDelay = d
	}
}

// EnsureInstalled makes sure the resolved item is present on the device.
// The call is idempotent: when the Status already lists a component with the
// item's name it returns immediately without touching the network. A fresh
// install downloads the artifact, verifies its checksum with a bounded
// retry, unpacks it into the fixed remote root, and returns a superseding
// Status. Partial installs are left in place on failure; a retry finds them
// via this same idempotence check once they are complete, and incomplete
// directories are overwritten by the unpack.
func (i *Installer) EnsureInstalled(ctx context.Context, sess sshx.Session, status *models.Status, item catalog.Item) (*Result, error) {
	if status.HasComponent(item.Name) {
		i.logger.Debug("component already installed", "component", item.Name)
		return &Result{
			Component:        item.Component(),
			AlreadyInstalled: true,
			Status:           status,
		}, nil
	}

	archivePath, err := i.downloadVerified(ctx, item)
	if err != nil {
		return nil, err
	}
	defer i.downloader.Discard(archivePath)

	if err := i.installArchive(ctx, sess, item, archivePath); err != nil {
		return nil, err
	}

	next := status.WithComponent(item.Component())
	if item.Category == catalog.CategoryDebugger {
		next = next.WithDebugger()
	}

	i.logger.Info("component installed",
		"component", item.Name, "version", item.Version, "device", sess.Name())

	return &Result{Component: item.Component(), Status: next}, nil
}

// downloadVerified fetches the artifact and checks its checksum, retrying
// the whole download a fixed number of times with a fixed delay. The
// comparison is case-insensitive over the hex digest.
func (i *Installer) downloadVerified(ctx context.Context, item catalog.Item) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= DownloadAttempts; attempt++ {
		if attempt > 1 {
			i.sleep(i.retryDelay)
		}

		archivePath, err := i.downloader.Download(ctx, item.Link)
		if err != nil {
			lastErr = pderr.Wrap(pderr.CodeDownloadFailure,
				fmt.Sprintf("download failed for %s", item.Name), err).
				WithContext("link", item.Link).
				WithContext("attempt", attempt)
			i.logger.Warn("download failed",
				"component", item.Name, "attempt", attempt, "error", err)
			continue
		}

		digest, err := i.downloader.Checksum(archivePath)
		if err != nil {
			i.downloader.Discard(archivePath)
			lastErr = pderr.Wrap(pderr.CodeDownloadFailure,
				fmt.Sprintf("checksum computation failed for %s", item.Name), err)
			continue
		}

		if !strings.EqualFold(digest, item.Checksum) {
			i.downloader.Discard(archivePath)
			lastErr = pderr.Newf(pderr.CodeChecksumMismatch,
				"checksum mismatch for %s", item.Name).
				WithContext("expected", item.Checksum).
				WithContext("actual", digest).
				WithContext("attempt", attempt)
			i.logger.Warn("checksum mismatch, discarding artifact",
				"component", item.Name, "attempt", attempt)
			continue
		}

		return archivePath, nil
	}

	return "", pderr.Wrap(pderr.CodeRetriesExhausted,
		fmt.Sprintf("giving up on %s after %d attempts", item.Name, DownloadAttempts), lastErr)
}

// installArchive pushes the verified archive to the device and unpacks it
// into the component's directory under the fixed root. Debugger-category
// items go into the debugger subdirectory instead of alongside general
// components. Runtime installs also wire the profile exports.
func (i *Installer) installArchive(ctx context.Context, sess sshx.Session, item catalog.Item, archivePath string) error {
	targetRoot := Root
	if item.Category == catalog.CategoryDebugger {
		targetRoot = DebuggerRoot
	}
	componentDir := path.Join(targetRoot, item.Component().DirName())
	remoteArchive := path.Join("/tmp", path.Base(archivePath))

	if err := sess.UploadFile(ctx, archivePath, remoteArchive); err != nil {
		return pderr.Wrap(pderr.CodeInstallFailure,
			fmt.Sprintf("failed to push %s to device", item.Name), err)
	}

	unpack := strings.Join([]string{
		fmt.Sprintf("sudo mkdir -p %s", componentDir),
		fmt.Sprintf("sudo tar -xzf %s -C %s", remoteArchive, componentDir),
		fmt.Sprintf("rm -f %s", remoteArchive),
	}, " && ")
	if _, err := sess.Run(ctx, unpack); err != nil {
		return pderr.Wrap(pderr.CodeInstallFailure,
			fmt.Sprintf("failed to unpack %s", item.Name), err)
	}

	if item.Category == catalog.CategoryRuntime {
		if err := i.ensureProfileExports(ctx, sess); err != nil {
			return err
		}
	}
	return nil
}

// ensureProfileExports appends the runtime root variable and PATH extension
// to the remote user's shell profile exactly once.
func (i *Installer) ensureProfileExports(ctx context.Context, sess sshx.Session) error {
	exports := fmt.Sprintf("export %s=%s\nexport PATH=$PATH:%s", EnvRootVar, Root, Root)
	script := fmt.Sprintf("grep -q '%s=' ~/.profile 2>/dev/null || printf '%%s\\n' '%s' >> ~/.profile",
		EnvRootVar, exports)
	if _, err := sess.Run(ctx, script); err != nil {
		return pderr.Wrap(pderr.CodeInstallFailure,
			"failed to update shell profile", err)
	}
	return nil
}
