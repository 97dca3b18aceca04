// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/barcode-sheet/internal/grid"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// Manifest records where every image landed in the artifact.
type Manifest struct {
	Artifact    string         `yaml:"artifact"`
	Source      string         `yaml:"source"`
	Renderer    string         `yaml:"renderer"`
	GeneratedAt time.Time      `yaml:"generated_at"`
	Images      int            `yaml:"images"`
	Pages       int            `yaml:"pages"`
	Layout      []ManifestPage `yaml:"layout"`
}

// ManifestPage lists the cells populated on one page.
type ManifestPage struct {
	Page  int            `yaml:"page"`
	Cells []ManifestCell `yaml:"cells"`
}

// ManifestCell is one placed image.
type ManifestCell struct {
	Image int `yaml:"image"`
	Row   int `yaml:"row"`
	Col   int `yaml:"col"`
}

// BuildManifest describes the layout of pages in artifact.
func BuildManifest(artifact types.FinalArtifact, source, renderer string, pages []types.StagedPage) Manifest {
	m := Manifest{
		Artifact:    artifact.Path,
		Source:      source,
		Renderer:    renderer,
		GeneratedAt: artifact.GeneratedAt,
		Images:      artifact.Images,
		Pages:       artifact.Pages,
		Layout:      make([]ManifestPage, 0, len(pages)),
	}
	for _, page := range pages {
		mp := ManifestPage{Page: page.Index, Cells: make([]ManifestCell, 0, len(page.Images))}
		for _, img := range page.Images {
			slot := grid.Assign(img)
			mp.Cells = append(mp.Cells, ManifestCell{Image: img, Row: slot.Row, Col: slot.Col})
		}
		m.Layout = append(m.Layout, mp)
	}
	return m
}

// WriteManifest writes the manifest as YAML beside the artifact, replacing
// its .pdf extension, and returns the manifest path.
func WriteManifest(artifact types.FinalArtifact, source, renderer string, pages []types.StagedPage) (string, error) {
	data, err := yaml.Marshal(BuildManifest(artifact, source, renderer, pages))
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	path := strings.TrimSuffix(artifact.Path, ".pdf") + ".yaml"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return path, nil
}
