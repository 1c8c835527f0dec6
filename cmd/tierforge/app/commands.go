package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eftimios/tierforge/cmd/tierforge/cmd/derive"
	"github.com/eftimios/tierforge/cmd/tierforge/cmd/list"
)

// registerCommands registers all subcommands with the root command.
// This is where we wire up all the command handlers.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewDeriveCommand())
	rootCmd.AddCommand(a.NewListCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewDeriveCommand creates the derive command with app dependencies.
func (a *App) NewDeriveCommand() *cobra.Command {
	return derive.NewCommand(a)
}

// NewListCommand creates the list command with app dependencies.
func (a *App) NewListCommand() *cobra.Command {
	return list.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tierforge %s (commit %s, built %s)\n", a.version, a.commit, a.date)
		},
	}
}
