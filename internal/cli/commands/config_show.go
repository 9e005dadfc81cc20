package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/indexadvisor/internal/cli/config"
	"github.com/conduit-lang/indexadvisor/internal/cli/ui"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the advisor's effective configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + env + defaults)",
		Long: `Print every recognized configuration key and the value it resolves to
once indexadvisor.yml, the ADVISOR_-prefixed environment, and the
algorithm's own defaults are merged.`,
		Example: `  indexadvisor config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				if unknown, ok := err.(config.ConfigUnknownKey); ok {
					suggestions := ui.FindSimilar(unknown.Key, config.KnownKeys(), nil)
					os.Stderr.WriteString(ui.UnknownConfigKeyError(unknown.Key, suggestions, false))
				}
				return err
			}

			table := ui.NewKeyValueTable(os.Stdout, false)
			for _, key := range config.KnownKeys() {
				table.AddRow(key, fmt.Sprintf("%v", cfg[key]))
			}
			table.Render()
			return nil
		},
	}
}
