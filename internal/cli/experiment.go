package cli

import (
	"fmt"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/domain"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Record experiments in the local experiment store",
	Long: `Record experiment runs directly in the local store: start one when a run
begins, append log lines while it runs and finish it with its metrics.`,
}

var experimentStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new experiment and print its id",
	Long: `Start a new experiment. The id is the start time, so ids sort by age.

Examples:
  mexp experiment start -p mnist --note "baseline" --arg --lr=0.1`,
	RunE: runExperimentStart,
}

var experimentLogCmd = &cobra.Command{
	Use:   "log <experiment> <line>...",
	Short: "Append log lines to an experiment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExperimentLog,
}

var experimentFinishCmd = &cobra.Command{
	Use:   "finish <experiment>",
	Short: "Finish an experiment with its metrics",
	Long: `Store the results of an experiment. Metrics keep the order given; values
parse as JSON numbers, true, false or null, anything else is text.

Examples:
  mexp experiment finish 2019-09-04T10-12-01-004512 -p mnist -m accuracy=0.97 -m loss=0.08 -m epochs=10`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentFinish,
}

var (
	experimentAuthor string
	experimentEmail  string
	experimentNotes  []string
	experimentArgs   []string
	experimentMetric []string
)

func init() {
	rootCmd.AddCommand(experimentCmd)
	experimentCmd.AddCommand(experimentStartCmd)
	experimentCmd.AddCommand(experimentLogCmd)
	experimentCmd.AddCommand(experimentFinishCmd)

	experimentStartCmd.Flags().StringVar(&experimentAuthor, "author", "", "author name (default: current user)")
	experimentStartCmd.Flags().StringVar(&experimentEmail, "email", "", "author email")
	experimentStartCmd.Flags().StringArrayVarP(&experimentNotes, "note", "n", nil, "note line (repeatable)")
	experimentStartCmd.Flags().StringArrayVar(&experimentArgs, "arg", nil, "command line argument of the run (repeatable)")
	experimentFinishCmd.Flags().StringArrayVarP(&experimentMetric, "metric", "m", nil, "metric as name=value (repeatable)")
}

func runExperimentStart(cmd *cobra.Command, args []string) error {
	name, err := requireProject()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	author := experimentAuthor
	if author == "" {
		if u, err := user.Current(); err == nil {
			author = u.Username
		}
	}
	info := &domain.ExecutionInfo{
		Author: domain.Author{Name: author, Email: experimentEmail},
		Notes:  append([]string{}, experimentNotes...),
		Args:   experimentArgs,
	}
	id, err := store.StartExperiment(ctx, name, info)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runExperimentLog(cmd *cobra.Command, args []string) error {
	name, err := requireProject()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return store.AppendLogs(ctx, name, args[0], args[1:])
}

func runExperimentFinish(cmd *cobra.Command, args []string) error {
	name, err := requireProject()
	if err != nil {
		return err
	}
	metrics, err := parseMetrics(experimentMetric)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.FinishExperiment(ctx, name, args[0], &domain.Results{Metrics: metrics}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Experiment %s finished with %d metric(s)\n", args[0], len(metrics))
	return nil
}

// parseMetrics turns name=value pairs into ordered metrics. A repeated name
// keeps its first position and its last value.
func parseMetrics(pairs []string) (domain.Metrics, error) {
	metrics := domain.Metrics{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid metric %q: want name=value", pair)
		}
		metrics = metrics.Set(name, domain.ParseMetricValue(strings.TrimSpace(value)))
	}
	return metrics, nil
}
