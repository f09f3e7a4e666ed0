package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/pyreqs/internal/app/requirements"
	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/metrics"
)

// session bundles what every command needs: a logger and a metrics recorder.
type session struct {
	root    *rootFlags
	log     *logger.Logger
	metrics *metrics.Recorder
}

// openSession builds the logger. defaultOut is where logs go when --log-file
// is unset; pass io.Discard when something else owns the terminal.
func openSession(root *rootFlags, defaultOut io.Writer) (*session, error) {
	level := "info"
	if root.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: !root.jsonLogs,
		Writer:        defaultOut,
		File:          root.logFile,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &session{root: root, log: log, metrics: metrics.New()}, nil
}

// prepare loads the requirements file with settings resolved against cmd's flags.
func (s *session) prepare(cmd *cobra.Command) (*requirements.Prepared, error) {
	return requirements.Prepare(s.root.file, cmd.Flags())
}

// close writes the metrics textfile when requested and releases the log file.
func (s *session) close() {
	if s.root.metricsFile != "" && s.log != nil {
		if err := s.metrics.WriteTextfile(s.root.metricsFile); err != nil {
			s.log.Warn(err, "Writing metrics textfile failed")
		}
	}
	_ = s.log.Close()
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
