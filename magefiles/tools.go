//go:build mage

package main

import (
	"errors"
	"fmt"
	"os/exec"
)

// requiredTools are the external programs each renderer backend needs.
var requiredTools = []struct {
	name   string
	bins   []string
	usedBy string
}{
	{name: "rasterizer", bins: []string{"pdftoppm"}, usedBy: "every run"},
	{name: "LibreOffice", bins: []string{"soffice", "libreoffice"}, usedBy: "--renderer soffice"},
	{name: "container runtime", bins: []string{"docker", "podman"}, usedBy: "--renderer container"},
}

// Doctor reports which external tools are installed.
func Doctor() error {
	missing := 0
	for _, tool := range requiredTools {
		found := ""
		for _, bin := range tool.bins {
			if path, err := exec.LookPath(bin); err == nil {
				found = path
				break
			}
		}
		if found == "" {
			missing++
			fmt.Printf("  missing  %-18s (needed for %s)\n", tool.name, tool.usedBy)
			continue
		}
		fmt.Printf("  ok       %-18s %s\n", tool.name, found)
	}
	if missing > 0 {
		return errors.New("some external tools are missing; --renderer native needs only the rasterizer")
	}
	return nil
}
