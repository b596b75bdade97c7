// internal/sshx/knownhosts.go

package sshx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"pideploy/internal/config"
)

const knownHostsFileName = "known_hosts"

// appKnownHostsPath returns the tool-owned known_hosts file. Device host
// keys are recorded here rather than in the user's ~/.ssh so that re-imaging
// a device never corrupts their personal file.
func appKnownHostsPath() (string, error) {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("could not get config directory: %w", err)
	}
	sshDir := filepath.Join(filepath.Dir(configPath), "ssh")
	return filepath.Join(sshDir, knownHostsFileName), nil
}

// hostKeyCallback builds a trust-on-first-use host key callback over the
// tool-owned known_hosts file: a host never seen before is recorded and
// accepted; a changed key for a known host is rejected.
func hostKeyCallback() (ssh.HostKeyCallback, error) {
	path, err := appKnownHostsPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create ssh directory: %w", err)
	}
	// knownhosts.New requires the file to exist.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open known_hosts: %w", err)
	}
	f.Close()

	verify, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := verify(hostname, remote, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) && len(keyErr.Want) == 0 {
			// First contact with this host: record and accept.
			return appendKnownHost(path, hostname, key)
		}
		return err
	}, nil
}

// forgetKnownHost drops any recorded key for addr from the tool-owned
// known_hosts file. Called when a changed host key is being replaced after
// the stored password re-established trust in the device.
func forgetKnownHost(addr string) error {
	path, err := appKnownHostsPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read known_hosts: %w", err)
	}

	target := knownhosts.Normalize(addr)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		matches := false
		for _, host := range strings.Split(fields[0], ",") {
			if host == target {
				matches = true
				break
			}
		}
		if !matches {
			kept = append(kept, trimmed)
		}
	}

	out := ""
	if len(kept) > 0 {
		out = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0600); err != nil {
		return fmt.Errorf("failed to rewrite known_hosts: %w", err)
	}
	return nil
}

// appendKnownHost records a host key in the tool-owned known_hosts file.
func appendKnownHost(path, hostname string, key ssh.PublicKey) error {
	line := knownhosts.Line([]string{hostname}, key)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open known_hosts for writing: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.TrimSpace(line) + "\n"); err != nil {
		return fmt.Errorf("failed to write known_hosts entry: %w", err)
	}
	return nil
}
