package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai/gemini"
	"github.com/spigell/alumni-matcher/internal/logger"
)

var bioCmd = &cobra.Command{
	Use:   "enhance-bio [TEXT]",
	Short: "Rewrite a bio to sound more professional",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := setup(ctx)

		bio := strings.Join(args, " ")
		if id, _ := cmd.Flags().GetString("id"); id != "" {
			bio = env.profile(id).Bio
		}
		if strings.TrimSpace(bio) == "" {
			env.logger.Fatal("nothing to enhance", zap.String("hint", "pass the bio as arguments or use --id"))
		}

		generator := env.generator(ctx)
		writer := gemini.NewWriter(generator, logger.WithCommonFields(env.logger, "gemini", generator.Model()))

		fmt.Fprintln(cmd.OutOrStdout(), writer.EnhanceBio(ctx, bio))
	},
}

var icebreakersCmd = &cobra.Command{
	Use:   "icebreakers",
	Short: "Suggest conversation openers for a profile",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		env := setup(ctx)

		id, _ := cmd.Flags().GetString("id")
		profile := env.profile(id)

		generator := env.generator(ctx)
		writer := gemini.NewWriter(generator, logger.WithCommonFields(env.logger, "gemini", generator.Model()))

		for _, line := range writer.Icebreakers(ctx, profile.Name, profile.Bio) {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", line)
		}
	},
}

func init() {
	rootCmd.AddCommand(bioCmd)
	rootCmd.AddCommand(icebreakersCmd)

	bioCmd.Flags().String("id", "", "enhance the bio of this profile")

	icebreakersCmd.Flags().String("id", "", "profile id")
	icebreakersCmd.MarkFlagRequired("id")
}
