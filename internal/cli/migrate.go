package cli

import (
	"github.com/spf13/cobra"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func newMigrateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "migrate-ids <file>",
		Short: "Rewrite legacy transition ids to the canonical form",
		Long: `Migrate-ids rewrites visual records that still carry the retired
"<source>-to-<target>" transition ids to the canonical "<source>-<index>"
form. When parallel transitions share source and target, the first match
in sequence order wins. The migration is one-way; canonical ids are left
untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			doc, err := workflow.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}

			migrated, n, err := doc.MigrateLegacyIDs()
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("no legacy ids found")
				return nil
			}
			logger.Debug("migrated ids", "count", n)

			target := output
			if target == "" {
				target = args[0]
			}
			if err := workflow.WriteDocumentFile(migrated, target); err != nil {
				return err
			}

			printSuccess("rewrote %d legacy transition id(s)", n)
			printFile(target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a different file")
	return cmd
}
