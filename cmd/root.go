package cmd

import (
	"github.com/spf13/cobra"

	"pipesh/core"
	"pipesh/core/config"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	return config.LoadOrDefault(cfgPath)
}

// rootCmd represents the base command; running it starts the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "pipesh",
	Short: "A small interactive Unix shell.",
	Long: `An interactive shell with pipelines, I/O redirection, background jobs
and a hard timeout on foreground commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		shell, err := core.NewShell(configuration)
		if err != nil {
			return err
		}
		defer shell.Close()

		return shell.Run()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
