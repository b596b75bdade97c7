// internal/install/download.go

package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Downloader fetches component artifacts. Split out of the installer so the
// retry and idempotence logic can be exercised without a network.
type Downloader interface {
	// Download fetches the artifact at the given link and returns the path
	// of the local temp file holding it.
	Download(ctx context.Context, link string) (string, error)

	// Checksum returns the lower-case hex SHA-256 digest of a local file.
	Checksum(path string) (string, error)

	// Discard removes a downloaded artifact.
	Discard(path string)
}

// HTTPDownloader is the production Downloader.
type HTTPDownloader struct {
	client *http.Client
	dir    string
}

// NewHTTPDownloader builds a downloader writing into the system temp
// directory. The timeout bounds each whole download attempt.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{Timeout: timeout},
		dir:    os.TempDir(),
	}
}

func (d *HTTPDownloader) Download(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("invalid download link: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(d.dir, "pideploy-*-"+path.Base(link))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("download interrupted: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (d *HTTPDownloader) Checksum(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (d *HTTPDownloader) Discard(filePath string) {
	if filePath != "" && filepath.Dir(filePath) == filepath.Clean(d.dir) {
		_ = os.Remove(filePath)
	}
}
