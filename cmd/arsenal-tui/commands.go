package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/controller"
)

var (
	errNoEndpoint    = errors.New("no registry endpoint configured (set --url or ARSENAL_URL)")
	errSyncFailed    = errors.New("roster sync failed")
	errForgeFailed   = errors.New("forge request failed")
	errInjectFailed  = errors.New("inject request failed")
	errBlankTaskText = errors.New("a description is required")
)

func newSyncCmd(cfg *appConfig) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the roster once and print the normalized capability list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), *cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if !a.live.Endpoint().Configured() {
				return errNoEndpoint
			}
			ok := a.sync.SyncNow(cmd.Context())
			out := cmd.OutOrStdout()
			printLog(out, a.log)
			if !ok {
				return errSyncFailed
			}
			fmt.Fprintln(out, renderCapabilityTable(arsenal.Filter(a.sync.List(), query)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "filter", "f", "", "Only show capabilities whose name or category contains this text")
	return cmd
}

func newForgeCmd(cfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "forge <description...>",
		Short: "Ask the registry to draft a new capability",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" {
				return errBlankTaskText
			}
			a, cleanup, err := bootstrap(cmd.Context(), *cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if !a.live.Endpoint().Configured() {
				return errNoEndpoint
			}
			ok := a.sub.Forge(cmd.Context(), description)
			printLog(cmd.OutOrStdout(), a.log)
			if !ok {
				return errForgeFailed
			}
			return nil
		},
	}
}

func newInjectCmd(cfg *appConfig) *cobra.Command {
	var (
		name     string
		category string
		codeFile string
		imports  string
	)
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Register a hand-written capability and re-sync the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := injectInput(cmd.InOrStdin(), name, category, codeFile, imports)
			if err != nil {
				return err
			}
			a, cleanup, err := bootstrap(cmd.Context(), *cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if !a.live.Endpoint().Configured() {
				return errNoEndpoint
			}
			ok := a.sub.Inject(cmd.Context(), in)
			printLog(cmd.OutOrStdout(), a.log)
			if !ok {
				return errInjectFailed
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Capability name (required)")
	flags.StringVar(&category, "category", arsenal.DefaultInjectCategory.String(), "Target category, see the categories command")
	flags.StringVar(&codeFile, "code-file", "", "File holding the implementation; '-' reads stdin; empty uses the built-in skeleton")
	flags.StringVar(&imports, "imports", controller.DefaultInjectImports, "Import lines sent with the implementation")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func injectInput(stdin io.Reader, name, category, codeFile, imports string) (controller.InjectInput, error) {
	in := controller.InjectInput{
		Name:    strings.TrimSpace(name),
		Code:    controller.DefaultInjectCode,
		Imports: imports,
	}
	if in.Name == "" {
		return in, errors.New("--name must not be blank")
	}
	cat, err := arsenal.ParseCategory(category)
	if err != nil {
		return in, err
	}
	in.Category = cat

	switch strings.TrimSpace(codeFile) {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return in, fmt.Errorf("read code from stdin: %w", err)
		}
		in.Code = string(data)
	default:
		data, err := os.ReadFile(codeFile)
		if err != nil {
			return in, fmt.Errorf("read code file: %w", err)
		}
		in.Code = string(data)
	}
	return in, nil
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories a capability can be injected into",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rows := make([][]string, 0, len(arsenal.AllCategories()))
			for _, c := range arsenal.AllCategories() {
				rows = append(rows, []string{c.String(), c.Label()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"CATEGORY", "LABEL"}, rows))
		},
	}
}

func renderCapabilityTable(entries []arsenal.CapabilityEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Name, entry.Category, string(entry.Status), string(entry.Origin)})
	}
	return renderTable([]string{"NAME", "CATEGORY", "STATUS", "ORIGIN"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	theme := newTheme()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.blue).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.pink)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
