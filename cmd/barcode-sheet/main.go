// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the barcode-sheet CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/barcode-sheet/internal/source"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

// rootCmd is the base command for the barcode-sheet CLI.
var rootCmd = &cobra.Command{
	Use:   "barcode-sheet",
	Short: "Lay out barcode images on printable grid sheets",
	Long: `barcode-sheet takes the pages of a source PDF as barcode images, places
them eight to a page in the 2x4 grid of a .docx template, renders each page
to PDF and joins the pages into one timestamped sheet.

Settings are read from settings.json (or settings.yaml) in the working
directory. Every key can be overridden with a BARCODE_SHEET_ environment
variable, for example BARCODE_SHEET_BARCODE_WIDTH=1.5.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./settings.json or ./settings.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("settings")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "barcode-sheet"))
		}
	}

	viper.SetEnvPrefix("BARCODE_SHEET")
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every settings key so environment overrides apply
// even when the config file omits the key.
func setDefaults(v *viper.Viper) {
	for _, key := range []string{
		"image_sequence_dir", "temp_docx", "temp_pdf",
		"output_docx", "input_docx", "output_pdf",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("barcode_width", 0.0)
	v.SetDefault("renderer", string(types.RendererSoffice))
	v.SetDefault("renderer_image", types.DefaultRendererImage)
	v.SetDefault("soffice_bin", types.DefaultSofficeBin)
	v.SetDefault("rasterizer_bin", types.DefaultRasterizerBin)
	v.SetDefault("zoom", types.DefaultZoom)
	v.SetDefault("history_db", types.DefaultHistoryDB)
	v.SetDefault("ready_attempts", types.DefaultReadyAttempts)
}

// loadSettings decodes and validates the run settings held by v.
func loadSettings(v *viper.Viper) (types.Settings, error) {
	var s types.Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, source.ErrAborted) {
			os.Exit(exitInterrupted)
		}
		os.Exit(1)
	}
}
