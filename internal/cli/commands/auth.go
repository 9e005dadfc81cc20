package commands

import (
	"fmt"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/indexadvisor/internal/advisor/server/auth"
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers for the serve command",
	}
	cmd.AddCommand(newAuthHashKeyCommand())
	return cmd
}

func newAuthHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [api-key]",
		Short: "Hash a static API key for auth_api_key_hash",
		Long: `Hash a raw API key with bcrypt so it can be stored as auth_api_key_hash
in indexadvisor.yml without keeping the plaintext key in the config file.

A caller presenting the raw key in an X-API-Key header will then
authenticate against the hash without needing a JWT from the operator.

If no key is given on the command line, it's prompted for interactively
so it never lands in shell history.`,
		Example: `  indexadvisor auth hash-key my-service-key
  indexadvisor auth hash-key`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				prompt := &survey.Password{Message: "API key to hash:"}
				if err := survey.AskOne(prompt, &key, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			hash, err := auth.HashAPIKey(key)
			if err != nil {
				return fmt.Errorf("hash api key: %w", err)
			}
			fmt.Println(hash)
			return nil
		},
	}
}
