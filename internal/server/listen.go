package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// Listen binds the first free port of preferred followed by fallbacks.
// Ports already tried are skipped.
func Listen(host string, preferred int, fallbacks []int, logger *slog.Logger) (net.Listener, int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := append([]int{preferred}, fallbacks...)
	tried := make(map[int]bool, len(candidates))
	var errs []error
	for _, port := range candidates {
		if tried[port] {
			continue
		}
		tried[port] = true

		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			logger.Warn("port unavailable", "port", port, "error", err)
			errs = append(errs, err)
			continue
		}
		bound := ln.Addr().(*net.TCPAddr).Port
		if port != preferred {
			logger.Info("using fallback port", "port", bound, "preferred", preferred)
		}
		return ln, bound, nil
	}
	return nil, 0, fmt.Errorf("no available port: %w", errors.Join(errs...))
}

// NewPortInfo describes a local API bound to port.
func NewPortInfo(port int, now time.Time) models.PortInfo {
	return models.PortInfo{
		Port:      port,
		URL:       fmt.Sprintf("http://localhost:%d", port),
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// WritePortFile records info at path so local tools can find the API.
func WritePortFile(path string, info models.PortInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create port file dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}
