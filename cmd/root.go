package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tanteijms/light-chaser-HUAWEI2025/dispatch"
	"github.com/tanteijms/light-chaser-HUAWEI2025/ioformat"
)

// defaultSeed is the fixed PRNG seed the CLI path always runs with. There is
// no flag or environment variable to override it — the weight bundle and the
// seed are both compiled-in defaults; see dispatch.DefaultWeights.
const defaultSeed = 42

// rootCmd is the sole command this binary exposes: no flags, no
// subcommands. It reads the input grammar from stdin and writes the
// emitted plan to stdout.
var rootCmd = &cobra.Command{
	Use:   "light-chaser",
	Short: "Offline batch-inference dispatcher for heterogeneous NPU servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := ioformat.Read(os.Stdin)
		if err != nil {
			logrus.Error(err)
			return err
		}

		d := dispatch.NewDriver(cat, defaultSeed)
		plan, summary, _, err := d.Run(context.Background())
		if err != nil {
			logrus.Error(err)
			return err
		}

		if err := ioformat.Write(os.Stdout, plan, cat.NumUsers()); err != nil {
			logrus.Error(err)
			return err
		}

		if summary.Stranded > 0 {
			logrus.Warnf("run completed with %d stranded sample(s) across %d incomplete user(s)",
				summary.Stranded, cat.NumUsers()-summary.CompletedUsers)
		}
		logrus.Infof("summary: completed=%d scheduled=%d stranded=%d epochs=%d deadlock_breaks=%d",
			summary.CompletedUsers, summary.Scheduled, summary.Stranded, summary.Epochs, summary.DeadlockBreaks)

		return nil
	},
}

// Execute runs the CLI root command, exiting the process with status 1 on
// any error (malformed input or an internal dispatch failure).
func Execute() {
	logrus.SetOutput(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
