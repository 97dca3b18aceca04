// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source finds the input PDF for a run, either from the command
// line or by asking the user to pick one of the PDFs in the working
// directory.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNoCandidates is returned when the directory holds no input PDF.
	ErrNoCandidates = errors.New("no input pdf found")

	// ErrAborted is returned when the user cancels the selection prompt.
	ErrAborted = errors.New("selection aborted")
)

// Candidate is an input PDF offered for selection.
type Candidate struct {
	Path    string
	ModTime time.Time
}

// Discover lists the regular files in dir whose name contains ".pdf" but
// not "output", oldest first. Generated artifacts carry "output" in their
// name and are never offered as input.
func Discover(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []Candidate
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.Contains(lower, ".pdf") || strings.Contains(lower, "output") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		out = append(out, Candidate{Path: filepath.Join(dir, name), ModTime: info.ModTime()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Path < out[j].Path
		}
		return out[i].ModTime.Before(out[j].ModTime)
	})
	return out, nil
}

// Selector picks one of options and returns its index.
type Selector interface {
	Select(ctx context.Context, message string, options []string) (int, error)
}

// Resolve returns explicit when it is set. Otherwise it discovers the
// candidates in dir and asks sel to choose one.
func Resolve(ctx context.Context, dir, explicit string, sel Selector) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("input pdf: %w", err)
		}
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("input pdf %s is not a regular file", explicit)
		}
		return explicit, nil
	}

	candidates, err := Discover(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoCandidates, dir)
	}

	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = fmt.Sprintf("%d. %s", i+1, filepath.Base(c.Path))
	}
	idx, err := sel.Select(ctx, "Select the source file:", options)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(candidates) {
		return "", fmt.Errorf("selection %d out of range [1, %d]", idx+1, len(candidates))
	}
	return candidates[idx].Path, nil
}
