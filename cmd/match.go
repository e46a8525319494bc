package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/ai/gemini"
	"github.com/spigell/alumni-matcher/internal/audio"
	"github.com/spigell/alumni-matcher/internal/logger"
	"github.com/spigell/alumni-matcher/internal/matching"
)

const PromptDone = "done"

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find mentors for a recorded mentorship request",
	Long: `Match reads a short recording (a file, or "-" for stdin), lets Gemini
transcribe and analyze it and ranks the roster against the analysis.
Recording stops at EOF, on Ctrl+C or after audio.max-duration.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("audio", "a", "-", "recording to analyze, '-' reads stdin")
	matchCmd.Flags().StringP("mime-type", "m", "", "container of the recording (sniffed when empty)")
	matchCmd.Flags().IntP("top", "n", 0, "number of candidates (default matching.top)")
	matchCmd.Flags().BoolP("yes", "y", false, "do not offer to pick a mentor for icebreakers")
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()
	env := setup(ctx)

	formats := env.config.Audio.Formats
	path := cmd.Flag("audio").Value.String()
	file, err := audio.Open(path)
	if err != nil {
		fatalAI(env.logger, "opening the recording", err)
	}

	src, err := audio.Prepare(file, cmd.Flag("mime-type").Value.String(), formats)
	if err != nil {
		fatalAI(env.logger, "checking audio support", err)
	}
	env.logger.Debug("negotiated recording format", zap.String("format", src.MIMEType))

	stop := make(chan struct{})
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		if _, ok := <-interrupts; ok {
			close(stop)
		}
	}()

	recorder := &audio.Recorder{
		Limit:    env.config.Audio.MaxDuration,
		MIMEType: src.MIMEType,
	}
	clip, err := recorder.Record(ctx, src, stop)
	signal.Stop(interrupts)
	close(interrupts)
	if err != nil {
		fatalAI(env.logger, "recording", err)
	}
	env.logger.Info("recording finished",
		zap.Int("bytes", len(clip.Data)),
		zap.String("mime_type", clip.MIMEType),
		zap.String("reason", string(clip.Reason)),
		zap.Bool("truncated", clip.Truncated),
	)

	generator := env.generator(ctx)
	analyzer := gemini.NewAudioAnalyzer(generator, formats, logger.WithCommonFields(env.logger, "gemini", generator.Model()))

	analysis, err := analyzer.Analyze(ctx, clip.Data, clip.MIMEType)
	if err != nil {
		fatalAI(env.logger, "analyzing the recording", err)
	}

	env.logger.Info("analysis",
		zap.String("transcript", analysis.Transcript),
		zap.Strings("keywords", analysis.Keywords),
		zap.Strings("traits", analysis.PersonalityTraits),
		zap.Int("score_hint", analysis.MatchingScoreHint),
	)

	top := env.config.Matching.Top
	if n, _ := cmd.Flags().GetInt("top"); n > 0 {
		top = n
	}
	candidates := matching.Rank(analysis, env.roster, top)

	out := cmd.OutOrStdout()
	for _, c := range candidates {
		fmt.Fprintf(out, "%3d%%  %-22s %-28s %s\n", c.Score, c.Profile.Name, c.Profile.Role, strings.Join(c.VibeTags, " · "))
	}

	if cmd.Flag("yes").Value.String() == "true" || len(candidates) == 0 || path == "-" {
		return
	}

	writer := gemini.NewWriter(generator, logger.WithCommonFields(env.logger, "gemini", generator.Model()))
	if err := pickMentor(ctx, cmd, writer, candidates); err != nil && !errors.Is(err, promptui.ErrInterrupt) {
		env.logger.Fatal("exiting", zap.Error(err))
	}
}

func pickMentor(ctx context.Context, cmd *cobra.Command, writer ai.Writer, candidates []matching.ScoredCandidate) error {
	for {
		items := make([]string, 0, len(candidates)+1)
		for _, c := range candidates {
			items = append(items, fmt.Sprintf("%s %s (%d%%)", c.Profile.ID, c.Profile.Name, c.Score))
		}

		mentorPrompt := promptui.Select{
			Label: "Choose a mentor to get icebreakers",
			Items: append(items, PromptDone),
		}

		_, selected, err := mentorPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptDone {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		for _, c := range candidates {
			if c.Profile.ID != id {
				continue
			}
			for _, line := range writer.Icebreakers(ctx, c.Profile.Name, c.Profile.Bio) {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", line)
			}
		}
	}
}

func fatalAI(log *zap.Logger, action string, err error) {
	log.Fatal(action,
		zap.String("error_kind", ai.Kind(err)),
		zap.String("hint", ai.UserMessage(err)),
		zap.Error(err),
	)
}
