package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/pyreqs/internal/probe"
)

// Set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type buildInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Built         string `json:"built"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	DefaultPython string `json:"default_python"`
}

// currentBuild fills in the module version for `go install` builds, which
// carry no ldflags.
func currentBuild() buildInfo {
	info := buildInfo{
		Version:       version,
		Commit:        commit,
		Built:         date,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		DefaultPython: probe.DefaultPython,
	}
	if info.Version != "dev" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	return info
}

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuild()
			if jsonOutput {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pyreqs %s (%s, built %s)\n%s %s, default interpreter %s\n",
				info.Version, info.Commit, info.Built, info.GoVersion, info.Platform, info.DefaultPython)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
