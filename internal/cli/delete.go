package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <experiment>...",
	Short: "Delete experiments",
	Long: `Delete one or more experiments of a project. The server removes all of
them or none.

Examples:
  mexp delete 2019-09-04T10-12-01-004512 -p mnist
  mexp delete 2019-09-04T10-12-01-004512 2019-09-05T08-00-00-000000 -p mnist --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

var (
	deleteYes bool

	askOne = survey.AskOne
)

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, metrics, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics(ctx, metrics)

	if !deleteYes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete %d experiment(s) from %s (%s)?", len(args), session.Project, strings.Join(args, ", ")),
			Default: false,
		}
		if err := askOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if err := selectOnly(session, args...); err != nil {
		return err
	}
	if err := session.DeleteSelected(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d experiment(s)\n", len(args))
	return nil
}
