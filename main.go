package main

import (
	"fmt"
	"os"

	"etalase/internal/config"
	"etalase/pkg/logger"

	"github.com/spf13/cobra"
)

// logLevelAnnotation holds a command's default log level.
const logLevelAnnotation = "log-level"

var (
	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "etalase",
	Short: "Terminal storefront for an inventory API",
	Long: `etalase is a terminal storefront. Shoppers browse the inventory, fill a
cart and buy; administrators manage stock and draw pixel-art product images.

Run "etalase serve" for a local development inventory API and
"etalase shell" to open the storefront against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if level == "" {
			level = cmd.Annotations[logLevelAnnotation]
		}
		logger.Init(logger.Options{Level: level, Pretty: cfg.LogPretty})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error, off (env LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Human-friendly log output (env LOG_PRETTY)")
	bindFlag(rootCmd, "LOG_LEVEL", "log-level")
	bindFlag(rootCmd, "LOG_PRETTY", "log-pretty")

	rootCmd.AddCommand(serveCmd, shellCmd, eventsCmd)
}

// bindFlag lets a flag override the configuration key when it is set.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
