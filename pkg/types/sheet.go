// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records passed between the stages of the
// barcode sheet pipeline: extracted images, grid slots, staged pages,
// rendered pages and the final artifact.
package types

import "time"

// ImageUnit is one staged raster image. Index is its position in the
// extraction sequence and never changes once assigned.
type ImageUnit struct {
	Index int    `json:"index" yaml:"index"`
	Path  string `json:"path" yaml:"path"`
}

// GridSlot addresses one cell of one output page.
type GridSlot struct {
	Page int `json:"page" yaml:"page"`
	Row  int `json:"row" yaml:"row"`
	Col  int `json:"col" yaml:"col"`
}

// StagedPage is a finalized page document written to the document staging
// directory. Images lists the image indices it holds in cell order.
type StagedPage struct {
	Index   int    `json:"index" yaml:"index"`
	DocPath string `json:"doc_path" yaml:"doc_path"`
	Images  []int  `json:"images" yaml:"images"`
}

// PageRenderUnit is the single-page PDF rendered from one StagedPage.
type PageRenderUnit struct {
	Index int    `json:"index" yaml:"index"`
	Path  string `json:"path" yaml:"path"`
}

// FinalArtifact describes the merged output of a run.
type FinalArtifact struct {
	Path        string    `json:"path" yaml:"path"`
	Pages       int       `json:"pages" yaml:"pages"`
	Images      int       `json:"images" yaml:"images"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// RunStatus is the outcome recorded for a run in the history ledger.
type RunStatus string

const (
	RunSucceeded   RunStatus = "succeeded"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// RunRecord is one row of the run history.
type RunRecord struct {
	ID         int64     `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	Renderer   string    `json:"renderer" yaml:"renderer"`
	Images     int       `json:"images" yaml:"images"`
	Pages      int       `json:"pages" yaml:"pages"`
	Output     string    `json:"output,omitempty" yaml:"output,omitempty"`
	Status     RunStatus `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
