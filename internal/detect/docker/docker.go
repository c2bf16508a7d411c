// Package docker implements the container/Docker detector: spawn+poll+timeout
// invocation of `docker system df`, size-string parsing, and Docker Desktop
// VM disk image detection.
package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

const detectorName = "docker"

// Detector is the container/Docker detector (C5).
type Detector struct{}

func New() *Detector { return &Detector{} }

func (d *Detector) Name() string { return detectorName }

func (d *Detector) Available(cfg *bloat.Config) bool {
	return cfg.DockerEnabled && !cfg.Disable(detectorName)
}

type dfRow struct {
	Type        string `json:"Type"`
	Size        string `json:"Size"`
	Reclaimable string `json:"Reclaimable"`
}

func (d *Detector) Scan(ctx context.Context, cfg *bloat.Config) bloat.DetectorResult {
	var result bloat.DetectorResult

	rows, diag, err := runDockerSystemDF(ctx, cfg.SubprocessTimeout)
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, err.Error())
	} else if diag != "" {
		result.Diagnostics = append(result.Diagnostics, diag)
	} else {
		for _, row := range rows {
			size, sizeErr := parseDockerSize(row.Size)
			if sizeErr != nil {
				result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("parse docker size %q: %v", row.Size, sizeErr))
				continue
			}
			reclaimable, _ := parseDockerSize(row.Reclaimable)
			kind, category, name := classifyDockerRow(row.Type)
			result.Entries = append(result.Entries, bloat.Entry{
				Category:         category,
				Name:             name,
				Path:             "<none>",
				Kind:             kind,
				SizeBytes:        size,
				ReclaimableBytes: reclaimable,
				DetectorOrigin:   detectorName,
			})
		}
	}

	if path, ok := cfg.Platform.DockerDesktopDiskPath(); ok {
		if info, statErr := os.Stat(path); statErr == nil {
			result.Entries = append(result.Entries, bloat.Entry{
				Category:         bloat.ContainerData,
				Name:             "docker desktop vm disk",
				Path:             path,
				Kind:             bloat.KindVMDiskImage,
				SizeBytes:        numeric.ClampNonNegative(info.Size()),
				ReclaimableBytes: 0,
				DetectorOrigin:   detectorName,
			})
		}
	}

	return result
}

func classifyDockerRow(dockerType string) (bloat.Kind, bloat.Category, string) {
	switch strings.ToLower(dockerType) {
	case "images":
		return bloat.KindDockerImages, bloat.ContainerData, "docker images"
	case "containers":
		return bloat.KindDockerContainers, bloat.ContainerData, "docker containers"
	case "local volumes":
		return bloat.KindDockerVolumes, bloat.ContainerData, "docker volumes"
	case "build cache":
		return bloat.KindDockerBuildCache, bloat.ContainerData, "docker build cache"
	default:
		return bloat.KindDockerImages, bloat.ContainerData, dockerType
	}
}

// runDockerSystemDF spawns `docker system df --format json`, polling for
// completion instead of blocking, and kills+reaps the child on timeout.
// It distinguishes "not installed" from "daemon not reachable" via the
// returned diagnostic string, both of which are non-fatal empty results.
func runDockerSystemDF(ctx context.Context, timeout time.Duration) ([]dfRow, string, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "docker", "system", "df", "--format", "json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, "docker is not installed", nil
		}
		return nil, "", fmt.Errorf("start docker: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			stderrText := stderr.String()
			if strings.Contains(stderrText, "Cannot connect to the Docker daemon") {
				return nil, "docker daemon is not running", nil
			}
			if strings.Contains(stderrText, "permission denied") {
				return nil, "docker: permission denied", nil
			}
			return nil, "", fmt.Errorf("docker system df: %w", err)
		}
	case <-runCtx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return nil, "docker system df timed out", nil
	}

	rows, err := parseSystemDFOutput(stdout.Bytes())
	if err != nil {
		return nil, "", fmt.Errorf("decode docker system df output: %w", err)
	}
	return rows, "", nil
}

// parseSystemDFOutput decodes `docker system df --format json`, which emits
// one JSON object per line rather than a single JSON array.
func parseSystemDFOutput(data []byte) ([]dfRow, error) {
	var rows []dfRow
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row dfRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var unitMultipliers = map[string]float64{
	"B":   1,
	"kB":  1_000,
	"MB":  1_000_000,
	"GB":  1_000_000_000,
	"TB":  1_000_000_000_000,
	"KiB": 1024,
	"MiB": 1024 * 1024,
	"GiB": 1024 * 1024 * 1024,
	"TiB": 1024 * 1024 * 1024 * 1024,
}

// parseDockerSize parses strings like "8.056GB" or "248.1MB (3%)" into a
// byte count, stripping any trailing percentage annotation first.
func parseDockerSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if idx := strings.Index(s, "("); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	numEnd := 0
	for numEnd < len(s) && (s[numEnd] >= '0' && s[numEnd] <= '9' || s[numEnd] == '.') {
		numEnd++
	}
	if numEnd == 0 {
		return 0, fmt.Errorf("no numeric prefix in %q", s)
	}
	numPart := s[:numEnd]
	unitPart := strings.TrimSpace(s[numEnd:])

	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", numPart, err)
	}

	multiplier, ok := unitMultipliers[unitPart]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", unitPart)
	}

	return uint64(n * multiplier), nil
}
