package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	adapterstate "github.com/hugo-lorenzo-mato/devtools/internal/adapters/state"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and maintain persisted tool state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted state of a scope",
	Long: `Show the persisted state of the selected scope after key migration.
Entries that cannot be read are reported and left out.`,
	RunE: runStateShow,
}

var stateMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite a scope in the current format",
	Long: `Load the state of the selected scope, migrate old property keys and
legacy documents, drop unreadable entries, and save it back.`,
	RunE: runStateMigrate,
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset tool configurations to their defaults",
	RunE:  runStateReset,
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted state of a scope",
	Long: `Delete the persisted state of the selected scope, or of every scope
with --all. The next load starts from an empty state.`,
	RunE: runStateClear,
}

var stateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every scope can be loaded",
	RunE:  runStateCheck,
}

var stateWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report external edits of the state documents",
	RunE:  runStateWatch,
}

var (
	stateShowTool   string
	stateShowFormat string

	stateMigrateDryRun bool

	stateResetTool     string
	stateResetType     string
	stateResetExamples bool

	stateClearAll bool
)

// errStateIssues is returned by check when any entry was dropped.
var errStateIssues = errors.New("state contains unreadable entries")

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd, stateMigrateCmd, stateResetCmd, stateClearCmd, stateCheckCmd, stateWatchCmd)

	stateShowCmd.Flags().StringVar(&stateShowTool, "tool", "", "Only show configurations of this tool")
	stateShowCmd.Flags().StringVar(&stateShowFormat, "format", "text", "Output format (text, xml, yaml, json)")

	stateMigrateCmd.Flags().BoolVar(&stateMigrateDryRun, "dry-run", false, "Print the migrated document instead of saving it")

	stateResetCmd.Flags().StringVar(&stateResetTool, "tool", "", "Only reset configurations of this tool")
	stateResetCmd.Flags().StringVar(&stateResetType, "type", "", "Only reset properties of this category (CONFIGURATION, INPUT, SENSITIVE)")
	stateResetCmd.Flags().BoolVar(&stateResetExamples, "examples", false, "Reset inputs to their example values")

	stateClearCmd.Flags().BoolVar(&stateClearAll, "all", false, "Clear every scope")
}

func runStateShow(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	s, report, err := rt.load(cmd.Context(), scope)
	if err != nil {
		return err
	}
	doc := s.GetState()
	if stateShowTool != "" {
		doc.Configurations = lo.Filter(doc.Configurations, func(c instance.ConfigurationState, _ int) bool {
			return lo.FromPtr(c.DeveloperToolID) == stateShowTool
		})
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(stateShowFormat) {
	case "xml":
		return instance.EncodeDocument(out, doc)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		return writeJSON(out, doc)
	case "text":
		writeStateText(out, scope, doc, report)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text, xml, yaml or json)", stateShowFormat)
	}
}

func writeStateText(out io.Writer, scope instance.Scope, doc *instance.InstanceState, report instance.LoadReport) {
	fmt.Fprintf(out, "%s %s\n", render(headerStyle, "Scope"), scope)
	if doc.Version != nil {
		fmt.Fprintf(out, "%s\n", render(mutedStyle, "version "+*doc.Version))
	}
	if doc.LastSelectedContentNodeID != nil {
		fmt.Fprintf(out, "Last selected: %s\n", *doc.LastSelectedContentNodeID)
	}
	if len(doc.ExpandedGroupNodeIDs) > 0 {
		fmt.Fprintf(out, "Expanded groups: %s\n", strings.Join(doc.ExpandedGroupNodeIDs, ", "))
	}
	fmt.Fprintln(out)

	if len(doc.Configurations) == 0 {
		fmt.Fprintln(out, render(mutedStyle, "No saved configurations"))
	}
	currentTool := ""
	for _, c := range doc.Configurations {
		toolID := lo.FromPtr(c.DeveloperToolID)
		if toolID != currentTool {
			fmt.Fprintln(out, render(headerStyle, toolID))
			currentTool = toolID
		}
		fmt.Fprintf(out, "  %s %s\n", lo.FromPtr(c.Name), render(mutedStyle, lo.FromPtr(c.ID)))
		if c.Properties == nil {
			continue
		}
		for _, p := range c.Properties.Properties {
			value := lo.FromPtr(p.Value)
			if lo.FromPtr(p.Type) == toolconfig.TypeSensitive.String() {
				value = "********"
			}
			fmt.Fprintf(out, "    %s %-13s %s\n", keyStyle.Render(lo.FromPtr(p.Key)), lo.FromPtr(p.Type), value)
		}
	}

	if len(report.Issues) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, render(warningStyle, fmt.Sprintf("%d entries could not be read:", len(report.Issues))))
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "  - %v\n", issue)
		}
	}
}

func runStateMigrate(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	s, report, err := rt.load(ctx, scope)
	if err != nil {
		return err
	}
	unknown, err := rt.catalog.BindAll(s, rt.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if stateMigrateDryRun {
		return instance.EncodeDocument(out, s.GetState())
	}
	if err := rt.save(ctx, scope, s); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s: %d configurations, %d properties\n",
		render(successStyle, "Migrated"), scope, report.Configurations, report.Properties)
	if len(report.Issues) > 0 {
		fmt.Fprintln(out, render(warningStyle, fmt.Sprintf("Dropped %d unreadable entries", len(report.Issues))))
	}
	if len(unknown) > 0 {
		fmt.Fprintf(out, "Kept configurations of unknown tools: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

func runStateReset(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}
	var resetOpts []toolconfig.ResetOption
	if stateResetType != "" {
		t, err := toolconfig.ParsePropertyType(strings.ToUpper(stateResetType))
		if err != nil {
			return err
		}
		resetOpts = append(resetOpts, toolconfig.ResetType(t))
	}
	if cmd.Flags().Changed("examples") {
		resetOpts = append(resetOpts, toolconfig.ResetLoadExamples(stateResetExamples))
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	toolIDs := rt.catalog.IDs()
	if stateResetTool != "" {
		if _, ok := rt.catalog.Lookup(stateResetTool); !ok {
			return fmt.Errorf("unknown tool %q", stateResetTool)
		}
		toolIDs = []string{stateResetTool}
	}

	ctx := cmd.Context()
	s, _, err := rt.load(ctx, scope)
	if err != nil {
		return err
	}

	count := 0
	for _, toolID := range toolIDs {
		def, _ := rt.catalog.Lookup(toolID)
		for _, c := range s.GetDeveloperToolConfigurations(toolID) {
			if err := def.Bind(c); err != nil {
				return err
			}
			c.Reset(resetOpts...)
			count++
		}
	}
	if err := rt.save(ctx, scope, s); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d configurations in %s\n", render(successStyle, "Reset"), count, scope)
	return nil
}

func runStateClear(cmd *cobra.Command, _ []string) error {
	scopes := instance.Scopes
	if !stateClearAll {
		scope, err := currentScope()
		if err != nil {
			return err
		}
		scopes = []instance.Scope{scope}
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	remover, ok := rt.store.(adapterstate.Remover)
	if !ok {
		return fmt.Errorf("the %s backend cannot delete state", appConfig.State.Backend)
	}
	out := cmd.OutOrStdout()
	for _, scope := range scopes {
		if err := remover.Remove(cmd.Context(), scope); err != nil {
			return fmt.Errorf("clearing %s state: %w", scope, err)
		}
		fmt.Fprintf(out, "%s %s\n", render(successStyle, "Cleared"), scope)
	}
	return nil
}

type scopeCheck struct {
	scope  instance.Scope
	report instance.LoadReport
	err    error
}

func runStateCheck(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	results := make([]scopeCheck, len(instance.Scopes))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, scope := range instance.Scopes {
		g.Go(func() error {
			_, report, err := rt.load(ctx, scope)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// Load failures belong to the scope; the other scopes keep going.
			results[i] = scopeCheck{scope: scope, report: report, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, r := range results {
		switch {
		case r.err != nil:
			failed = true
			fmt.Fprintf(out, "%s %-12s %v\n", render(errorStyle, "✗"), r.scope, r.err)
		case len(r.report.Issues) > 0:
			failed = true
			fmt.Fprintf(out, "%s %-12s %d configurations, %d unreadable entries\n",
				render(warningStyle, "!"), r.scope, r.report.Configurations, len(r.report.Issues))
			for _, issue := range r.report.Issues {
				fmt.Fprintf(out, "    - %v\n", issue)
			}
		default:
			fmt.Fprintf(out, "%s %-12s %d configurations\n",
				render(successStyle, "✓"), r.scope, r.report.Configurations)
		}
	}
	if failed {
		return errStateIssues
	}
	return nil
}

func runStateWatch(cmd *cobra.Command, _ []string) error {
	if !strings.EqualFold(appConfig.State.Backend, adapterstate.BackendXML) && appConfig.State.Backend != "" {
		return fmt.Errorf("watch needs the %s backend, configured: %s", adapterstate.BackendXML, appConfig.State.Backend)
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(appConfig.State.Dir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", appConfig.State.Dir)

	w := adapterstate.NewWatcher(appConfig.State.Dir, adapterstate.WithWatcherLogger(rt.logger))
	return w.Run(ctx, func(scope instance.Scope) {
		report := reloadScope(ctx, rt, scope)
		fmt.Fprintf(out, "%s %s: %d configurations, %d unreadable entries\n",
			render(headerStyle, "Reloaded"), scope, report.Configurations, len(report.Issues))
	})
}

func reloadScope(ctx context.Context, rt *runtime, scope instance.Scope) instance.LoadReport {
	_, report, err := rt.load(ctx, scope)
	if err != nil {
		rt.logger.Warn("reloading state failed", "scope", scope.String(), "error", err)
		report.Issues = append(report.Issues, err)
	}
	return report
}
