package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "indexadvisor",
		Short: "Recommend database indexes for a SQL workload",
		Long: color.CyanString(`indexadvisor - automated index recommendation

indexadvisor runs the Extend greedy heuristic against a workload of
queries and a live (or simulated) database, recommending the set of
indexes that improves the workload's total cost the most per byte of
storage it spends.

Commands:
  • recommend      - run Extend against a workload file
  • demo           - run Extend against a seeded in-memory database
  • serve          - expose recommend/stream over HTTP
  • db connect     - verify the configured database and hypopg extension
  • auth hash-key  - hash a static API key for serve's auth_api_key_hash`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewRecommendCommand())
	rootCmd.AddCommand(NewDemoCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewDBCommand())
	rootCmd.AddCommand(NewAuthCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the indexadvisor version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Print("indexadvisor version: ")
			valueColor.Println(Version)

			titleColor.Print("Git commit: ")
			valueColor.Println(GitCommit)

			titleColor.Print("Build date: ")
			valueColor.Println(BuildDate)

			titleColor.Print("Go version: ")
			valueColor.Println(goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
