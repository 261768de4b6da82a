package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	redisrepo "github.com/freeeve/brass-engine/internal/repository/redis"
	"github.com/freeeve/brass-engine/pkg/brass"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	RedisURL string
	Count    int
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Follow the events a server publishes for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, cmd.OutOrStdout(), args[0])
		},
	}
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	cmd.Flags().StringVar(&opts.RedisURL, "redis", redisURL, "Redis URL")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "exit after this many events (0 = until interrupted)")
	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, w io.Writer, gameID string) error {
	client, err := redisrepo.NewClient(opts.RedisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	sub := client.SubscribeEvents(ctx, gameID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if opts.Format == "text" {
		fmt.Fprintf(w, "watching %s\n", redisrepo.EventsChannel(gameID))
	}

	msgs := sub.Channel()
	for seen := 0; opts.Count == 0 || seen < opts.Count; seen++ {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			printWatched(w, opts.Format, []byte(msg.Payload))
		}
	}
	return nil
}

func printWatched(w io.Writer, format string, payload []byte) {
	if format == "json" {
		fmt.Fprintln(w, string(payload))
		return
	}
	var ev brass.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		fmt.Fprintf(w, "? %s\n", payload)
		return
	}
	fmt.Fprintf(w, "%-18s %s\n", ev.Type, payload)
}
