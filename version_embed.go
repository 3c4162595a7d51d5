package main

import (
	_ "embed"
	"strings"

	"picsort/cmd"
)

//go:embed VERSION
var embeddedVersion string

// A version injected with -ldflags wins over the embedded file.
func init() {
	if v := strings.TrimSpace(embeddedVersion); v != "" && cmd.Version == "dev" {
		cmd.Version = v
	}
	cmd.ApplyVersion()
}
