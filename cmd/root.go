package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/config"
	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/tables"
)

var (
	dataDir    string
	verbose    bool
	configPath string
	cfg        *config.Config
	log        logger.Logger
)

var rootCmd = &cobra.Command{
	Use:          "guess-tally",
	Short:        "Collect, rank and publish coordinate guesses from a chat channel",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}

		logger.Init(os.Stderr)
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		if err := logger.SetLevelString(level); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		log = logger.Named(cmd.Name())

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "Directory holding roundlist.csv, aliases.csv and Rounds/")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the CLI. An interrupt cancels the command context; collect
// checks it between submissions so nothing is saved after Ctrl-C.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func paths() tables.Paths {
	return tables.Paths{Dir: dataDir}
}

// stdin is shared so prompts from different stages read one buffered stream.
var stdin = bufio.NewReader(os.Stdin)

// promptValue returns current if set, otherwise asks on stdout.
func promptValue(current, label string) (string, error) {
	if strings.TrimSpace(current) != "" {
		return strings.TrimSpace(current), nil
	}
	fmt.Printf("%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
