// Copyright (c) 2024 The Phantom Archive developers
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package config loads and saves the node and CLI configuration file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the name of the configuration file inside the data directory.
const ConfigFileName = "config"

// Config holds the settings shared by `phantom serve` and the client commands.
type Config struct {
	DataDir    string // Data directory (keystore, databases, content store)
	ListenAddr string // JSON-RPC listen address for serve
	Network    string // "localhost", "sepolia" or "mainnet"
	LogLevel   string // "debug", "info", "warn" or "error"
	LogFile    string // Log file path; empty logs to stderr
	RPCURL     string // Node URL used by client commands; empty uses the network preset
	Contract   string // Archive contract address; empty asks the node
}

// DefaultDataDir returns ~/.phantom, or .phantom in the working directory if
// the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".phantom"
	}
	return filepath.Join(home, ".phantom")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		ListenAddr: "127.0.0.1:8545",
		Network:    "localhost",
		LogLevel:   "info",
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), ConfigFileName)
}

// LoadConfig reads a key = value file. Blank lines and lines starting with '#'
// are skipped, values may contain '=', unknown keys are ignored and missing
// keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		applyKey(&cfg, key, value)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Phantom Archive Configuration\n\n")
	for _, kv := range [][2]string{
		{"datadir", cfg.DataDir},
		{"listen", cfg.ListenAddr},
		{"network", cfg.Network},
		{"loglevel", cfg.LogLevel},
		{"logfile", cfg.LogFile},
		{"rpcurl", cfg.RPCURL},
		{"contract", cfg.Contract},
	} {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func applyKey(cfg *Config, key, value string) {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "listen":
		cfg.ListenAddr = value
	case "network":
		cfg.Network = value
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	case "rpcurl":
		cfg.RPCURL = value
	case "contract":
		cfg.Contract = value
	}
}
