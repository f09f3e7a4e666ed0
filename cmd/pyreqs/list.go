package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/pyreqs/internal/config"
	"github.com/alexisbeaulieu97/pyreqs/internal/probe"
)

type listOptions struct {
	jsonOutput bool
}

func newListCmd(root *rootFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the packages pip reports as installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runList(cmd *cobra.Command, root *rootFlags, opts *listOptions) error {
	sess, err := openSession(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.close()

	settings, err := listSettings(cmd, root.file)
	if err != nil {
		return err
	}

	pip := probe.New(probe.Options{
		Python:        settings.Python,
		Bootstrap:     settings.Bootstrap,
		MinPipVersion: settings.MinPipVersion,
	}, sess.log, sess.metrics)
	if err := pip.EnsureToolAvailable(cmd.Context()); err != nil {
		return err
	}
	index, err := pip.ListInstalled(cmd.Context())
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return renderListJSON(cmd, pip, index)
	}
	return renderListTable(cmd, index)
}

// listSettings uses the requirements file's settings when the file exists;
// listing does not need any requirements declared.
func listSettings(cmd *cobra.Command, path string) (config.Settings, error) {
	var file map[string]any
	cfg, err := config.ParseConfig(path)
	switch {
	case err == nil:
		file = cfg.Settings
	case errors.Is(err, os.ErrNotExist):
	default:
		return config.Settings{}, err
	}
	return config.LoadSettings(file, cmd.Flags())
}

func renderListTable(cmd *cobra.Command, index probe.Index) error {
	if index.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No packages installed.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "PACKAGE\tVERSION")
	for _, name := range index.Names() {
		v, _ := index.Version(name)
		fmt.Fprintf(writer, "%s\t%s\n", name, v)
	}
	return writer.Flush()
}

type listJSONPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listJSONPayload struct {
	Python     string            `json:"python"`
	PipVersion string            `json:"pip_version"`
	Count      int               `json:"count"`
	Packages   []listJSONPackage `json:"packages"`
}

func renderListJSON(cmd *cobra.Command, pip *probe.PipProbe, index probe.Index) error {
	payload := listJSONPayload{
		Python:     pip.Python(),
		PipVersion: pip.PipVersion(),
		Count:      index.Len(),
		Packages:   make([]listJSONPackage, 0, index.Len()),
	}
	for _, name := range index.Names() {
		v, _ := index.Version(name)
		payload.Packages = append(payload.Packages, listJSONPackage{Name: name, Version: v})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
