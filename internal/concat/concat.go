// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package concat joins per-page PDFs into the final artifact.
package concat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoUnits is returned when there is nothing to concatenate.
var ErrNoUnits = errors.New("no page renders to concatenate")

// Concatenate writes the PDFs at units, in order, to dest. The result is
// assembled in a temporary file beside dest and renamed into place, so dest
// is either complete or absent. A single unit is copied byte for byte.
func Concatenate(units []string, dest string) (err error) {
	if len(units) == 0 {
		return ErrNoUnits
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".concat-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if len(units) == 1 {
		err = copyUnit(units[0], tmp)
	} else {
		err = merge(units, tmp)
	}
	if err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp artifact: %w", err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("moving artifact to %s: %w", dest, err)
	}
	return nil
}

func copyUnit(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening page render %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying page render %s: %w", path, err)
	}
	return nil
}

func merge(units []string, w io.Writer) error {
	readers := make([]io.ReadSeeker, 0, len(units))
	for _, path := range units {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening page render %s: %w", path, err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.MergeRaw(readers, w, false, conf); err != nil {
		return fmt.Errorf("merging %d page render(s): %w", len(units), err)
	}
	return nil
}

// PageCount reports the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}
