package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a workflow document's structural invariants",
		Long: `Validate reads a workflow document file and checks that its configuration
and canvas layout are mutually consistent: the initial state exists, every
transition targets a defined state, the layout covers exactly the defined
states, and every visual record resolves to a real transition.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			logger.Debug("validating document", "file", args[0])

			doc, err := workflow.ReadDocumentFile(args[0])
			if err != nil {
				printError("%s", err)
				return fmt.Errorf("invalid document")
			}

			printSuccess("%s is valid", args[0])
			printDetail("workflow: %s (version %s)", doc.Configuration.Name, doc.Configuration.Version)
			printDetail("states: %d, transitions: %d",
				len(doc.Configuration.States), doc.Configuration.TransitionCount())
			if terminal := doc.Configuration.TerminalStates(); len(terminal) > 0 {
				printDetail("terminal states: %v", terminal)
			} else {
				printWarning("no terminal states: every state has an exit")
			}
			return nil
		},
	}
}
