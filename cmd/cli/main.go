package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"lcgwalk/adapters/excel"
	"lcgwalk/adapters/report"
	"lcgwalk/domain/motion"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal"
	"lcgwalk/internal/agent"
	"lcgwalk/internal/config"
	"lcgwalk/internal/container"
	"lcgwalk/internal/perception"
	"lcgwalk/internal/uniformity"
	"lcgwalk/internal/validation"
	"lcgwalk/internal/walk"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type cliState struct {
	config   *config.Config
	logger   *internal.Logger
	logLevel string
}

func main() {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "lcgwalk",
		Short: "Validated LCG sequences and the random walks they drive",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			state.config = cfg
			level := state.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			state.logger = internal.NewLogger(internal.ParseLevel(level))
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "Log level: error|warn|info|debug|trace (default LOG_LEVEL or info)")

	rootCmd.AddCommand(
		newGenerateCmd(state),
		newSurveyCmd(state),
		newWalkCmd(state),
		newCheckCmd(state),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGenerateCmd(state *cliState) *cobra.Command {
	var (
		seed        int64
		count       int
		alpha       float64
		maxAttempts int
		output      string
		decimals    int
		xlsxPath    string
		reportPath  string
		store       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Search seeds for a sequence that passes the mean and variance tests",
		Long: `Run the bounded generate/validate search from a fixed seed and write the
accepted sequence to a text artifact, one value per line.

Example: lcgwalk generate --seed 127 --output ri_numbers.txt --xlsx session.xlsx --report report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.config.Search()
			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Generator.Seed = seed
			}
			if flags.Changed("count") {
				cfg.SampleCount = count
			}
			if flags.Changed("alpha") {
				cfg.SignificanceLevel = alpha
			}
			if flags.Changed("max-attempts") {
				cfg.MaxAttempts = maxAttempts
			}
			if !flags.Changed("output") {
				output = state.config.Report.OutputFile
			}
			if !flags.Changed("decimals") {
				decimals = state.config.Report.Decimals
			}
			if !flags.Changed("xlsx") {
				xlsxPath = state.config.Report.ExcelFile
			}
			return runGenerate(cmd.Context(), state, cfg, output, decimals, xlsxPath, reportPath, store)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 12345, "Initial seed x0")
	cmd.Flags().IntVar(&count, "count", 100, "Samples per attempt")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", validation.DefaultMaxAttempts, "Attempt budget")
	cmd.Flags().StringVar(&output, "output", "ri_numbers.txt", "Text artifact path (overwritten)")
	cmd.Flags().IntVar(&decimals, "decimals", report.DefaultDecimals, "Fixed decimals in the artifact")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the session to this xlsx workbook")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a markdown report (.md) or HTML report (.html)")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the session (DATABASE_URL or memory)")

	return cmd
}

func runGenerate(ctx context.Context, state *cliState, cfg validation.ValidationConfig, output string, decimals int, xlsxPath, reportPath string, store bool) error {
	session, err := validation.Run(cfg, validation.WithLogger(state.logger))
	if err != nil {
		return err
	}
	printSession(session)

	if reportPath != "" {
		var body []byte
		if strings.EqualFold(filepath.Ext(reportPath), ".html") {
			body = report.HTML(session)
		} else {
			body = []byte(report.Markdown(session))
		}
		if err := os.WriteFile(reportPath, body, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	if store {
		c, err := container.New(state.config, state.logger)
		if err != nil {
			return err
		}
		defer c.Shutdown(ctx)
		if err := c.Init(ctx); err != nil {
			return err
		}
		if err := c.SessionRepo.Save(ctx, session); err != nil {
			return err
		}
		fmt.Printf("Session %s stored\n", session.ID)
	}

	if !session.Accepted() {
		return session.Err()
	}

	if err := report.WriteSessionArtifact(output, session, decimals); err != nil {
		return err
	}
	fmt.Printf("Wrote %d values to %s\n", session.SampleCount, output)

	if xlsxPath != "" {
		mapper, err := walk.NewMapper(state.config.Walk.DirectionThreshold)
		if err != nil {
			return err
		}
		if err := excel.WriteSession(xlsxPath, session, mapper); err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", xlsxPath)
	}
	return nil
}

func printSession(s *sequence.Session) {
	fmt.Printf("Session %s: %s after %d/%d attempts (trial seed %d)\n", s.ID, s.State, s.Attempt, s.MaxAttempts, s.TrialSeed)
	if s.Mean != nil {
		fmt.Printf("  %s\n", s.Mean)
	}
	if s.Variance != nil {
		fmt.Printf("  %s\n", s.Variance)
	}
}

func newSurveyCmd(state *cliState) *cobra.Command {
	var (
		start       int64
		seeds       int
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Run independent searches over many initial seeds in parallel",
		Long: `Run one search per initial seed and report how often searches are accepted
and how many attempts they need.

Example: lcgwalk survey --start 1 --seeds 500 --parallelism 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seeds <= 0 {
				return fmt.Errorf("--seeds must be > 0")
			}
			base := state.config.Search()
			list := make([]int64, seeds)
			for i := range list {
				list[i] = start + int64(i)
			}

			executor := validation.NewConcurrentExecutor(parallelism, validation.WithLogger(state.logger))
			result, err := executor.Survey(cmd.Context(), base, list)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "searches\t%d\n", len(result.Sessions))
			fmt.Fprintf(w, "accepted\t%d\n", result.Accepted)
			fmt.Fprintf(w, "exhausted\t%d\n", result.Exhausted)
			fmt.Fprintf(w, "acceptance rate\t%.4f\n", result.AcceptanceRate())
			fmt.Fprintf(w, "mean attempts\t%.3f\n", result.MeanAttempts())
			fmt.Fprintf(w, "max attempts\t%d\n", result.MaxAttempts)
			fmt.Fprintf(w, "elapsed\t%s\n", result.Elapsed.Round(time.Millisecond))
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&start, "start", 1, "First initial seed")
	cmd.Flags().IntVar(&seeds, "seeds", 100, "Number of consecutive initial seeds")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent searches (default NumCPU)")

	return cmd
}

func newWalkCmd(state *cliState) *cobra.Command {
	var (
		agents   int
		steps    int
		dt       time.Duration
		targetX  float64
		targetY  float64
		noTarget bool
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Simulate agents walking on validated sequences",
		Long: `Create agents, each with its own validated sequence, and step them on a
fixed tick. Agents chase the target when it comes within DETECTION_RADIUS.

Example: lcgwalk walk --agents 5 --steps 200 --dt 250ms --target-x 10 --target-y 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := container.New(state.config, state.logger)
			if err != nil {
				return err
			}
			if err := c.Engagement.Init(ctx); err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			var target *perception.MovableTarget
			if !noTarget {
				target = perception.NewMovableTarget(motion.Vec2{X: targetX, Y: targetY})
			}

			// observers share the counter below, so tick one walker at a time
			swarm := agent.NewSwarm(1)
			changes := 0
			for i := 0; i < agents; i++ {
				opts := []agent.Option{
					agent.WithLogger(state.logger),
					agent.WithEngagement(c.Engagement),
					agent.WithObserver(func(ev agent.Event) {
						if ev.Kind == agent.EventDirectionChanged {
							changes++
						}
					}),
				}
				if target != nil {
					opts = append(opts, agent.WithSensor(perception.NewRadiusSensor(state.config.Walk.DetectionRadius, target)))
				}
				if cmd.Flags().Changed("seed") {
					opts = append(opts, agent.WithSeedSource(agent.FixedSeed(seed+int64(i))))
				}
				w, err := agent.NewWalker(state.config.Agent(), opts...)
				if err != nil {
					return err
				}
				swarm.Add(w)
			}
			defer swarm.Close()

			err = swarm.Run(ctx, steps, dt, func(step int, frames []agent.Frame) {
				c.Engagement.Tick(dt)
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "agent\tsequence\tattempts\tsteps\tposition\tfacing")
			for _, wk := range swarm.Walkers() {
				ready := "exhausted"
				walked := 0
				if wk.SequenceReady() {
					ready = "accepted"
					walked = wk.Cursor().Steps()
				}
				p, f := wk.Position(), wk.Facing()
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t(%.2f, %.2f)\t(%.0f, %.0f)\n",
					wk.ID(), ready, wk.Session().Attempt, walked, p.X, p.Y, f.X, f.Y)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("Simulated %s, %d direction changes, engagement level %.2f\n",
				swarm.Elapsed(), changes, c.Engagement.Level())
			return nil
		},
	}

	cmd.Flags().IntVar(&agents, "agents", 3, "Number of agents")
	cmd.Flags().IntVar(&steps, "steps", 100, "Simulation ticks")
	cmd.Flags().DurationVar(&dt, "dt", 250*time.Millisecond, "Tick length")
	cmd.Flags().Float64Var(&targetX, "target-x", 10, "Target X position")
	cmd.Flags().Float64Var(&targetY, "target-y", 0, "Target Y position")
	cmd.Flags().BoolVar(&noTarget, "no-target", false, "Run without a target")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed agents deterministically from this value instead of the clock")

	return cmd
}

func newCheckCmd(state *cliState) *cobra.Command {
	var alpha float64

	cmd := &cobra.Command{
		Use:   "check [workbook.xlsx]",
		Short: "Re-run the mean and variance tests on an exported workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := excel.ReadSamples(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("alpha") {
				alpha = state.config.Validation.SignificanceLevel
			}

			mean, variance := uniformity.Validate(seq, alpha)
			fmt.Printf("%d samples from %s\n  %s\n", seq.Len(), args[0], mean)
			if variance == nil {
				return fmt.Errorf("mean test failed, variance test skipped")
			}
			fmt.Printf("  %s\n", variance)
			if !variance.Passed() {
				return fmt.Errorf("variance test failed")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	return cmd
}
