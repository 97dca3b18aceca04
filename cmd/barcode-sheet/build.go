// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/barcode-sheet/internal/extract"
	"github.com/pdiddy/barcode-sheet/internal/history"
	"github.com/pdiddy/barcode-sheet/internal/pipeline"
	"github.com/pdiddy/barcode-sheet/internal/render"
	"github.com/pdiddy/barcode-sheet/internal/source"
)

var buildCmd = &cobra.Command{
	Use:   "build [source.pdf]",
	Short: "Build a barcode sheet from a source PDF",
	Long: `Build rasterizes every page of the source PDF into a barcode image, lays
the images out eight per page on the template grid, renders each page and
writes {output_pdf}{YYYY.MM.DD_HH.MM.SS}.pdf to the working directory.

Without an argument, build lists the PDFs in the working directory (oldest
first, skipping names that contain "output") and asks which one to use.
Staging directories are cleared before the run and removed after it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	imageDir, _ := cmd.Flags().GetString("images")
	var src string
	if imageDir == "" {
		var explicit string
		if len(args) > 0 {
			explicit = args[0]
		}
		if src, err = source.Resolve(ctx, root, explicit, source.SurveySelector{}); err != nil {
			return err
		}
	}

	r, err := render.New(ctx, s)
	if err != nil {
		return err
	}

	var recorder pipeline.Recorder
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		dbPath := s.HistoryDB
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(root, dbPath)
		}
		store, err := history.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	manifest, _ := cmd.Flags().GetBool("manifest")
	keep, _ := cmd.Flags().GetBool("keep-staging")

	p := pipeline.New(s, extract.NewPdftoppm(s.RasterizerBin), r, recorder, os.Stdout)
	artifact, err := p.Run(ctx, pipeline.Options{
		Root:        root,
		Source:      src,
		ImageDir:    imageDir,
		Manifest:    manifest,
		KeepStaging: keep,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nDone: %s\n", artifact.Path)
	return nil
}

func init() {
	buildCmd.Flags().String("renderer", "", "page renderer: soffice, container, or native (default from settings)")
	buildCmd.Flags().String("images", "", "use pre-rasterized images from this directory instead of a source PDF")
	buildCmd.Flags().Bool("manifest", false, "write a YAML layout manifest beside the sheet")
	buildCmd.Flags().Bool("keep-staging", false, "keep staging directories after the run")
	buildCmd.Flags().Bool("no-history", false, "do not record the run in the history ledger")
	_ = viper.BindPFlag("renderer", buildCmd.Flags().Lookup("renderer"))

	rootCmd.AddCommand(buildCmd)
}
