// Package cli implements the brassctl command line tool.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/freeeve/brass-engine/pkg/brass"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DataFile string
}

var validFormats = []string{"text", "json"}

// errFailed is returned when a command ran but its checks did not pass.
var errFailed = errors.New("one or more runs failed")

// NewRootCommand creates the brassctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "brassctl",
		Short: "Replay scripted games and run bot simulations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print the game log")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataFile, "data", "", "game data YAML (default: built-in board)")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	return cmd
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		return 2
	}
}

func (o *RootOptions) gameData() (*brass.GameData, error) {
	if o.DataFile == "" {
		return brass.StandardData(), nil
	}
	f, err := os.Open(o.DataFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return brass.LoadGameData(f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLog(w io.Writer, entries []brass.LogEntry) {
	for _, e := range entries {
		who := e.Player
		if who == "" {
			who = "-"
		}
		fmt.Fprintf(w, "  [%s %d] %s: %s\n", e.Era, e.Round, who, e.Message)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
