package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freeeve/brass-engine/internal/harness"
	"github.com/freeeve/brass-engine/pkg/brass"
)

type replayResult struct {
	File    string          `json:"file"`
	Name    string          `json:"name"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	State   brass.StatePath `json:"state,omitempty"`
	Summary string          `json:"summary,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var logSize int
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Run YAML scenarios and report the final positions",
		Long: `Run each scenario file against a fresh engine. A scenario fails when
an event is refused unexpectedly or the final position does not match its
expect block.

Examples:
  brassctl replay testdata/loan.yaml
  brassctl replay --format json scenarios/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rootOpts.gameData()
			if err != nil {
				return fmt.Errorf("load game data: %w", err)
			}
			results := make([]replayResult, 0, len(args))
			failed := false
			for _, path := range args {
				r, entries := replayFile(data, path, logSize)
				failed = failed || !r.OK
				results = append(results, r)
				if rootOpts.Format == "text" {
					printReplay(cmd, r, entries, rootOpts.Verbose)
				}
			}
			if rootOpts.Format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&logSize, "log-size", 200, "game log lines kept for --verbose")
	return cmd
}

func replayFile(data *brass.GameData, path string, logSize int) (replayResult, []brass.LogEntry) {
	r := replayResult{File: path}
	s, err := harness.LoadFile(path)
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.Name = s.Name
	ring := brass.NewRingLog(logSize)
	e, err := s.Run(data, brass.WithLogSink(ring))
	r.State = e.Path()
	r.Summary = harness.Summary(e)
	if err != nil {
		r.Error = err.Error()
	} else {
		r.OK = true
	}
	return r, ring.Entries()
}

func printReplay(cmd *cobra.Command, r replayResult, entries []brass.LogEntry, verbose bool) {
	w := cmd.OutOrStdout()
	status := "PASS"
	if !r.OK {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s", status, r.File)
	if r.Name != "" {
		fmt.Fprintf(w, " (%s)", r.Name)
	}
	fmt.Fprintln(w)
	if r.Error != "" {
		fmt.Fprintf(w, "  %s\n", r.Error)
	}
	if verbose {
		printLog(w, entries)
		fmt.Fprint(w, r.Summary)
	}
}
