package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pschleger/workflow-canvas/pkg/render"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func newRenderCmd() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the workflow graph as DOT, SVG, or PNG",
		Long: `Render draws the workflow's state graph as a node-link diagram. The
initial state is outlined, terminal states are shaded, and disabled
transitions are dashed. SVG and PNG output uses the embedded Graphviz
engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := workflow.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}

			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
				if format == "" {
					format = "dot"
				}
			}

			dot := render.ToDOT(doc.Configuration, render.Options{Detailed: detailed})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg", "png":
				sp := newSpinner("rendering " + format)
				sp.start()
				if format == "svg" {
					data, err = render.RenderSVG(cmd.Context(), dot)
				} else {
					data, err = render.RenderPNG(cmd.Context(), dot)
				}
				sp.stop()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (want dot, svg, or png)", format)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("rendered %s", format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "dot, svg, or png (default from output extension)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "annotate transitions with guards and processors")
	return cmd
}
