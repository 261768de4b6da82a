package cli

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freeeve/brass-engine/internal/bot"
	"github.com/freeeve/brass-engine/pkg/brass"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Players    int
	Games      int
	Seed       int64
	Strategies string
	MaxActions int
}

type simResult struct {
	Game      int              `json:"game"`
	Seed      int64            `json:"seed"`
	Actions   int              `json:"actions"`
	Finished  bool             `json:"finished"`
	Result    *brass.Result    `json:"result,omitempty"`
	Log       []brass.LogEntry `json:"-"`
	Players   []string         `json:"strategies"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play bot-only games and report the results",
		Long: `Play complete games between bots. Strategies are assigned to seats in
order from a comma-separated list, repeating the last one.

Examples:
  brassctl simulate --players 3 --games 20 --seed 7
  brassctl simulate --strategy hard,easy --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}
	cmd.Flags().IntVarP(&opts.Players, "players", "p", 2, "players per game (2-4)")
	cmd.Flags().IntVarP(&opts.Games, "games", "n", 1, "number of games")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "base seed (0 = random)")
	cmd.Flags().StringVar(&opts.Strategies, "strategy", "easy", "seat strategies (easy|medium|hard|pass), comma separated")
	cmd.Flags().IntVar(&opts.MaxActions, "max-actions", 2000, "abandon a game after this many actions")
	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	if opts.Players < brass.MinPlayers || opts.Players > brass.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d", brass.MinPlayers, brass.MaxPlayers)
	}
	if opts.Games < 1 {
		return fmt.Errorf("games must be at least 1")
	}
	data, err := opts.gameData()
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	bot.SeedBotRng(seed)
	defer bot.ResetBotRng()

	strategies := seatStrategies(opts.Strategies, opts.Players)
	results := make([]simResult, 0, opts.Games)
	wins := make(map[string]int)
	failed := false
	for g := range opts.Games {
		r, err := simulateGame(data, seed+int64(g), strategies, opts.MaxActions)
		if err != nil {
			return fmt.Errorf("game %d: %w", g+1, err)
		}
		r.Game = g + 1
		results = append(results, r)
		switch {
		case !r.Finished:
			failed = true
		case r.Result.Draw:
			wins["draw"]++
		default:
			wins[r.Result.Winner]++
		}
	}

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		printSimulation(cmd, results, wins, opts.Verbose)
	}
	if failed {
		return errFailed
	}
	return nil
}

func seatStrategies(list string, players int) []bot.Strategy {
	names := strings.Split(list, ",")
	out := make([]bot.Strategy, players)
	for i := range out {
		name := names[min(i, len(names)-1)]
		out[i] = bot.StrategyForDifficulty(strings.TrimSpace(name))
	}
	return out
}

func simulateGame(data *brass.GameData, seed int64, strategies []bot.Strategy, maxActions int) (simResult, error) {
	ring := brass.NewRingLog(500)
	e := brass.NewEngine(data, brass.WithSeed(seed), brass.WithLogSink(ring))

	seats := make([]brass.PlayerSetup, len(strategies))
	byPlayer := make(map[string]bot.Strategy, len(strategies))
	r := simResult{Seed: seed}
	for i, st := range strategies {
		id := fmt.Sprintf("p%d", i+1)
		seats[i] = brass.PlayerSetup{ID: id, Name: fmt.Sprintf("%s %d", st.Name(), i+1)}
		byPlayer[id] = st
		r.Players = append(r.Players, st.Name())
	}
	start := brass.StartGame(seats...)
	start.Seed = seed
	if err := e.Send(start); err != nil {
		return r, err
	}

	for ; r.Actions < maxActions && !e.IsGameOver(); r.Actions++ {
		player := e.CurrentPlayer()
		script := bot.NextScript(e, byPlayer[player])
		if script == nil {
			return r, fmt.Errorf("%s has no legal action at %s", player, e.Path())
		}
		if err := e.SendAll(script...); err != nil {
			return r, fmt.Errorf("%s %s refused: %w", player, script.Action(), err)
		}
	}
	r.Finished = e.IsGameOver()
	r.Result = e.State().Result
	r.Log = ring.Entries()
	return r, nil
}

func printSimulation(cmd *cobra.Command, results []simResult, wins map[string]int, verbose bool) {
	w := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(w, "game %d (seed %d, %d actions): ", r.Game, r.Seed, r.Actions)
		switch {
		case !r.Finished:
			fmt.Fprintln(w, "unfinished")
		case r.Result.Draw:
			fmt.Fprintln(w, "draw")
		default:
			fmt.Fprintf(w, "%s wins\n", r.Result.Winner)
		}
		if r.Result != nil {
			for _, s := range r.Result.Standings {
				fmt.Fprintf(w, "  %-4s vp=%d income=%d money=%d\n", s.PlayerID, s.VP, s.Income, s.Money)
			}
		}
		if verbose {
			printLog(w, r.Log)
		}
	}
	if len(results) > 1 {
		fmt.Fprint(w, "wins:")
		for _, id := range sortedKeys(wins) {
			fmt.Fprintf(w, " %s=%d", id, wins[id])
		}
		fmt.Fprintln(w)
	}
}
