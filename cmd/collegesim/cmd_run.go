package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/engine"
	"github.com/talgya/collegesim/internal/logging"
	"github.com/talgya/collegesim/internal/persistence"
	"github.com/talgya/collegesim/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation for --max-time years. --max-time and --simtag are
required, either as flags or in the --config file. Output files are
suffixed with the simtag.`,
		Example: `  collegesim run --max-time 4 --simtag 1
  collegesim run --config params.yaml --simtag 2 --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveParams(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSim(ctx, p, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.Int("max-time", config.Unset, "Number of simulated years (required)")
	f.Int64("simtag", config.Unset, "Tag appended to output file names (required)")
	f.Float64("race-weight", 0, "Similarity weight of sharing a race")
	f.Float64("prob-white", 0, "Probability a new student is white")
	f.Int("trial-num", 0, "Trial number recorded with the run")
	f.Int64("seed", 0, "Random seed (default: current time)")
	f.Int("init-num-people", 0, "Initial number of students")
	f.Int("num-freshmen-per-year", 0, "Freshmen enrolling each year")
	f.Int("init-num-groups", 0, "Initial number of groups")
	f.Int("num-new-groups-per-year", 0, "Groups founded each year")
	f.Int("forced-opposite-race-friends", 0, "Opposite-race friendships given to each freshman")
	f.String("out", "", "Output directory for CSV files")
	f.String("db", "", "SQLite database to record the run in")
	return cmd
}

// resolveParams layers defaults, the --config file and explicitly set flags.
func resolveParams(cmd *cobra.Command) (*config.Params, error) {
	p := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	flags := cmd.Flags()
	setInt := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	setInt64 := func(name string, dst *int64) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt64(name)
		}
	}
	setFloat := func(name string, dst *float64) {
		if flags.Changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}
	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	setInt("max-time", &p.MaxYears)
	setInt64("simtag", &p.SimTag)
	setFloat("race-weight", &p.Weights.Race)
	setFloat("prob-white", &p.ProbabilityWhite)
	setInt("trial-num", &p.TrialNum)
	setInt64("seed", &p.Seed)
	setInt("init-num-people", &p.InitNumPeople)
	setInt("num-freshmen-per-year", &p.NumFreshmenPerYear)
	setInt("init-num-groups", &p.InitNumGroups)
	setInt("num-new-groups-per-year", &p.NumNewGroupsPerYear)
	setInt("forced-opposite-race-friends", &p.ForcedOppositeRace)
	setString("out", &p.OutputDir)
	setString("db", &p.DBPath)
	setString("log-level", &p.LogLevel)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// runSim wires the sinks, runs the simulation and prints a summary to out.
func runSim(ctx context.Context, p *config.Params, out io.Writer) error {
	logger := logging.NewLogger(p.LogLevel, out)
	slog.SetDefault(logger)

	paramsPath := filepath.Join(p.OutputDir, p.ParamsFileName())
	if err := p.Save(paramsPath); err != nil {
		return err
	}

	csvSink, err := report.NewCSVSink(p.OutputDir, p.SimTag)
	if err != nil {
		return fmt.Errorf("open csv output: %w", err)
	}
	sinks := report.Multi{csvSink}

	var db *persistence.DB
	if p.DBPath != "" {
		db, err = persistence.Open(p.DBPath)
		if err != nil {
			csvSink.Close()
			return err
		}
		if _, err := db.StartRun(p); err != nil {
			csvSink.Close()
			db.Close()
			return err
		}
		sinks = append(sinks, db)
		slog.Info("database opened", "path", p.DBPath, "run_id", db.RunID())
	}

	sim, err := engine.New(p, sinks, logger)
	if err != nil {
		sinks.Close()
		return err
	}

	runErr := sim.Run(ctx)
	if db != nil {
		if err := db.SaveMeta("years_completed", strconv.Itoa(sim.Stats.YearsCompleted)); err != nil {
			slog.Warn("save meta failed", "error", err)
		}
	}
	if err := sinks.Close(); err != nil {
		slog.Error("closing output failed", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	printSummary(out, p, sim)
	return nil
}

func printSummary(out io.Writer, p *config.Params, sim *engine.Simulation) {
	st := sim.Stats
	fmt.Fprintf(out, "\nRun %d finished after %d of %d years (seed %d)\n",
		p.SimTag, st.YearsCompleted, p.MaxYears, p.Seed)
	fmt.Fprintf(out, "  students enrolled:   %s\n", humanize.Comma(int64(p.InitNumPeople+st.Enrolled)))
	fmt.Fprintf(out, "  graduated:           %s\n", humanize.Comma(int64(st.Graduated)))
	fmt.Fprintf(out, "  dropped out:         %s\n", humanize.Comma(int64(st.DroppedOut)))
	fmt.Fprintf(out, "  still enrolled:      %s\n", humanize.Comma(int64(len(sim.People()))))
	fmt.Fprintf(out, "  meetings:            %s\n", humanize.Comma(int64(st.Meetings)))
	fmt.Fprintf(out, "  friendships formed:  %s\n", humanize.Comma(int64(st.Friendships)))
	fmt.Fprintf(out, "  friendships lapsed:  %s\n", humanize.Comma(int64(st.Decays)))
	fmt.Fprintf(out, "  groups founded:      %s (%s dissolved)\n",
		humanize.Comma(int64(st.GroupsFounded)), humanize.Comma(int64(st.GroupsDissolved)))
	if st.SinkErrors > 0 {
		fmt.Fprintf(out, "  output errors:       %s\n", humanize.Comma(int64(st.SinkErrors)))
	}
	fmt.Fprintf(out, "  output:              %s\n", p.OutputDir)
}
