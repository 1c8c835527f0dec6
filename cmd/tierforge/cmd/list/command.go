// Package list implements the tierforge list command: a read-only view of
// the models and tier names in each preset registry.
package list

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eftimios/tierforge/cmd/application"
)

// NewCommand creates the list command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list [registry]",
		Short: "List models and their tiers per registry",
		Args:  cobra.MaximumNArgs(1),
		Long: `List shows every model entry of the given registry (or of both
well-known registries) together with the tier names it carries, in
document order. Nothing is modified.`,
		Example: `  tierforge list
  tierforge list style_config.json
  tierforge list --dir presets/lrs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store := app.Store(dir)
			names := app.Registries()
			if len(args) == 1 {
				names = []string{args[0]}
			}

			for _, name := range names {
				doc, err := store.Load(ctx, name)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s (%d models)\n", name, doc.Models().Len())
				for _, id := range doc.Models().IDs() {
					entry, _ := doc.Models().Get(id)
					table := entry.Tiers()
					if table == nil {
						fmt.Fprintf(out, "  %s: (not a tier table)\n", id)
						continue
					}
					fmt.Fprintf(out, "  %s: %s\n", id, strings.Join(table.Names(), ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "registry directory (default \"lrs\")")

	return cmd
}
