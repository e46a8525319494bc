package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai/gemini"
	"github.com/spigell/alumni-matcher/internal/filtering"
	"github.com/spigell/alumni-matcher/internal/logger"
	"github.com/spigell/alumni-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and matching HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env := setup(ctx)
		generator := env.generator(ctx)
		aiLogger := logger.WithCommonFields(env.logger, "gemini", generator.Model())

		extractor, closer := env.intentExtractor(ctx, generator)
		defer closer.Close()

		srv := server.New(server.Deps{
			Roster:    env.roster,
			Extractor: extractor,
			Analyzer:  gemini.NewAudioAnalyzer(generator, env.config.Audio.Formats, aiLogger),
			Writer:    gemini.NewWriter(generator, aiLogger),
			Filtering: &filtering.Config{ExcludeFile: env.config.ExcludeFile},
			Top:       env.config.Matching.Top,
			Logger:    env.logger,
		}, env.config.Server.Options)

		errs := make(chan error, 1)
		go func() {
			errs <- srv.Start(env.config.Server.Listen)
		}()

		select {
		case err := <-errs:
			if err != nil {
				env.logger.Fatal("serving", zap.Error(err))
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				env.logger.Error("shutting down", zap.Error(err))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default server.listen)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}
