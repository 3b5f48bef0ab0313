package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/devtools/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Work with the tool catalog",
}

var toolsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List developer tools",
	Long:  "List the developer tools, optionally filtered by a fuzzy query on id and title.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runToolsList,
}

var toolsListJSON bool

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
	toolsListCmd.Flags().BoolVar(&toolsListJSON, "json", false, "Output as JSON")
}

type toolSummary struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Group tools.Group `json:"group"`
}

func runToolsList(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	found := tools.Default().Find(query)

	out := cmd.OutOrStdout()
	if toolsListJSON {
		summaries := make([]toolSummary, 0, len(found))
		for _, d := range found {
			summaries = append(summaries, toolSummary{ID: d.ID, Title: d.Title, Group: d.Group})
		}
		return writeJSON(out, summaries)
	}

	if len(found) == 0 {
		fmt.Fprintf(out, "No tools match %q\n", query)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tGROUP")
	for _, d := range found {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Title, d.Group)
	}
	return w.Flush()
}
