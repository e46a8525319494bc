package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/filtering"
	"github.com/spigell/alumni-matcher/internal/search"
)

const (
	PromptNewQuery         = "New query"
	PromptClear            = "Clear filters"
	PromptReportByIndustry = "Report by industry"
	PromptProfilesToFile   = "Dump profiles to file"
	PromptExit             = "Exit"
)

var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search the directory with a free-text query",
	Long: `Search filters the roster by the query (name, role or company) and by the
location, industry, role and graduation years Gemini extracts from it.
Without a query, or with --interactive, an interactive session is started.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolP("interactive", "i", false, "keep the session open and refine the query")
	searchCmd.Flags().StringP("exclude-file", "e", "", "yaml list of profile ids hidden from the directory")
}

func runSearch(cmd *cobra.Command, query string) {
	ctx := context.Background()
	env := setup(ctx)

	excludeFile := env.config.ExcludeFile
	if flag := cmd.Flag("exclude-file"); flag != nil && flag.Value.String() != "" {
		excludeFile = flag.Value.String()
	}

	extractor, closer := env.intentExtractor(ctx, env.generator(ctx))
	defer closer.Close()

	session := search.NewSession(env.roster, extractor, &filtering.Config{ExcludeFile: excludeFile}, env.logger)

	interactive := query == "" || cmd.Flag("interactive").Value.String() == "true"
	if query != "" {
		if err := submit(ctx, cmd, env, session, query); err != nil {
			env.logger.Fatal("search failed", zap.Error(err))
		}
	}
	if !interactive {
		return
	}

	for {
		actions := promptui.Select{
			Label: "Next?",
			Items: []string{PromptNewQuery, PromptClear, PromptReportByIndustry, PromptProfilesToFile, PromptExit},
		}
		_, action, err := actions.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			env.logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleSearchAction(ctx, cmd, env, session, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			env.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

var errExit = errors.New("exit requested")

func handleSearchAction(ctx context.Context, cmd *cobra.Command, env *environment, session *search.Session, action string) error {
	switch action {
	case PromptNewQuery:
		input := promptui.Prompt{Label: "Query"}
		query, err := input.Run()
		if err != nil {
			return err
		}
		return submit(ctx, cmd, env, session, query)
	case PromptClear:
		session.Clear()
		env.logger.Info("filters cleared", zap.Int("profiles", env.roster.Len()))
		return nil
	case PromptReportByIndustry:
		result, err := session.Results(ctx)
		if err != nil {
			return err
		}
		view := env.roster.Without()
		view.Items = result.Profiles
		pretty, _ := json.MarshalIndent(view.ReportByIndustry(), "", "  ")
		env.logger.Info(string(pretty), zap.Int("profiles count", view.Len()))
		return nil
	case PromptProfilesToFile:
		result, err := session.Results(ctx)
		if err != nil {
			return err
		}
		view := env.roster.Without()
		view.Items = result.Profiles
		filename, err := view.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		env.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func submit(ctx context.Context, cmd *cobra.Command, env *environment, session *search.Session, query string) error {
	result, err := session.Submit(ctx, query)
	if err != nil {
		return err
	}

	if result.Intent != nil {
		env.logger.Info("understood the query", zap.Any("intent", result.Intent.Fields()))
	}
	for _, step := range result.Steps {
		env.logger.Debug("filter", zap.String("name", step.Name), zap.Bool("enabled", step.Enabled), zap.Any("details", step.Details))
	}

	out := cmd.OutOrStdout()
	for _, p := range result.Profiles {
		fmt.Fprintf(out, "%-6s %-22s %-28s %-20s %-18s %s\n", p.ID, p.Name, p.Role, p.Company, p.Location, p.Industry)
	}
	env.logger.Info("search finished", zap.String("query", result.Query), zap.Int("found", len(result.Profiles)))
	return nil
}
