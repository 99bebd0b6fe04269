package cli

import (
	"os"

	"Impostor/config"
	"Impostor/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const releaseVersion = "1.0.0"

// NewRootCmd builds the impostor command tree. Every subcommand shares the
// same configuration flags, filled from the environment when unset.
func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "impostor",
		Short:   "Backend for the Impostor word party game.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.Setup(os.Stdout, cfg.LogLevel, !cfg.Prod)
			return nil
		},
	}

	fs := cmd.PersistentFlags()
	config.RegisterFlags(fs, cfg)
	config.BindEnv(v, fs)

	cmd.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg), newSeedWordsCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
