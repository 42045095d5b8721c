package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mexp/internal/app"
	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/util"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects in the local experiment store",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a project",
	Long: `Create a project, or update its description if it already exists.

Examples:
  mexp project create mnist --description "Digit classifier sweeps"`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runProjectList,
}

var projectDescription string

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCreateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p := &domain.Project{Name: args[0], Description: projectDescription}
	if err := store.CreateProject(ctx, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %q saved\n", p.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := store.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
		return nil
	}

	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{p.Name, util.Truncate(p.Description, 48), util.FormatDateHuman(p.LastTimeUpdated)}
	}
	printTable(cmd.OutOrStdout(), []string{"NAME", "DESCRIPTION", "UPDATED"}, rows)
	return nil
}
