package cmdutil

import (
	"github.com/spf13/cobra"
	"github.com/tabcheck/tabcheck/retry"
)

var loadRetrySettings = retry.DefaultSettings()

// RegisterRetryFlags registers the flags controlling how reads of remote
// inputs are retried.
func RegisterRetryFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(
		&loadRetrySettings.MaxRetries,
		"load-retries-max-iterations",
		loadRetrySettings.MaxRetries,
		"maximum number of times reading an input is retried",
	)
	cmd.PersistentFlags().DurationVar(
		&loadRetrySettings.InitialBackoff,
		"load-retry-initial-backoff",
		loadRetrySettings.InitialBackoff,
		"amount of time to initially backoff for before retrying a read",
	)
	cmd.PersistentFlags().DurationVar(
		&loadRetrySettings.MaxBackoff,
		"load-retry-max-backoff",
		loadRetrySettings.MaxBackoff,
		"maximum amount of time to backoff for between reads",
	)
	cmd.PersistentFlags().IntVar(
		&loadRetrySettings.Multiplier,
		"load-retry-multiplier",
		loadRetrySettings.Multiplier,
		"multiplier applied to the backoff after each unsuccessful read",
	)
}

func LoadRetrySettings() retry.Settings {
	return loadRetrySettings
}
