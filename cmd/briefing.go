package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/ai/gemini"
	"github.com/spigell/alumni-matcher/internal/logger"
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Write a daily industry briefing for a profile",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		env := setup(ctx)

		id, _ := cmd.Flags().GetString("id")
		interest, _ := cmd.Flags().GetString("interest")
		profile := env.profile(id)

		generator := env.generator(ctx)
		writer := gemini.NewWriter(generator, logger.WithCommonFields(env.logger, "gemini", generator.Model()))

		fmt.Fprintln(cmd.OutOrStdout(), writer.Briefing(ctx, ai.BriefingSubject{
			Name:     profile.Name,
			Industry: profile.Industry,
			Interest: interest,
			Role:     profile.Role,
			Company:  profile.Company,
			Skills:   profile.Skills,
		}))
	},
}

func init() {
	rootCmd.AddCommand(briefingCmd)

	briefingCmd.Flags().String("id", "", "profile id")
	briefingCmd.Flags().String("interest", "", "topic to focus on (defaults to the profile industry)")
	briefingCmd.MarkFlagRequired("id")
}
