package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/matching"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest people to connect with",
	Run: func(cmd *cobra.Command, _ []string) {
		env := setup(context.Background())

		id, _ := cmd.Flags().GetString("id")
		connected, _ := cmd.Flags().GetStringSlice("connected")
		limit, _ := cmd.Flags().GetInt("limit")

		suggestions := matching.Suggest(env.profile(id), env.roster, connected, limit)
		for _, s := range suggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-6s %-22s %-28s %s\n", s.Score, s.Profile.ID, s.Profile.Name, s.Profile.Role, s.Profile.Location)
		}
		env.logger.Debug("suggestions", zap.Int("count", len(suggestions)))
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().String("id", "", "profile to suggest connections for")
	suggestCmd.Flags().StringSlice("connected", nil, "ids already connected")
	suggestCmd.Flags().Int("limit", matching.DefaultSuggestions, "maximum number of suggestions")
	suggestCmd.MarkFlagRequired("id")
}
