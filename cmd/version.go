package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Actual version can be specified in build command.
var version = "unknown"

type buildInfo struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Go      string `json:"go"`
	Model   string `json:"model"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the configured Gemini model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printVersion(cmd.OutOrStdout(), currentBuild(), viper.GetBool("json"))
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(versionCmd)
}

func currentBuild() buildInfo {
	info := buildInfo{
		App:     app,
		Version: version,
		Go:      runtime.Version(),
		Model:   viper.GetString("ai.gemini.model"),
	}
	// go install records the module version
	if info.Version == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

func printVersion(w io.Writer, info buildInfo, asJSON bool) error {
	if asJSON {
		return printJSON(w, info)
	}
	_, err := fmt.Fprintf(w, "%s version: %s (%s, model %s)\n", info.App, info.Version, info.Go, info.Model)
	return err
}
