package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/latticehost/actorhost/internal/actorsys"
	"github.com/latticehost/actorhost/internal/demo"
)

var topologyOutputHTML bool

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "print a snapshot report of a freshly constructed system's actors",
	RunE:  runTopology,
}

func init() {
	topologyCmd.Flags().BoolVar(
		&topologyOutputHTML, "html", false,
		"render the report as HTML instead of raw markdown",
	)
}

func runTopology(cmd *cobra.Command, args []string) error {
	sys := actorsys.New(actorsys.SystemId(systemID), actorsys.NoopDelegate{})

	ctx := context.Background()
	greeter := &demo.Greeter{}
	id, err := actorsys.AddNamed(ctx, sys, "greeter", greeter, actorsys.Handles(demo.HandleGreet))
	if err != nil {
		return fmt.Errorf("adding demo actor: %w", err)
	}

	report := renderTopologyMarkdown(sys, id)
	if !topologyOutputHTML {
		fmt.Print(report)
		return sys.Shutdown(ctx)
	}

	htmlReport, err := markdownToHTML(report)
	if err != nil {
		return err
	}
	fmt.Print(htmlReport)

	return sys.Shutdown(ctx)
}

func renderTopologyMarkdown(sys *actorsys.System, greeterID actorsys.ActorId) string {
	return fmt.Sprintf(`# Topology: %s

| actor | name | status |
|---|---|---|
| %s | greeter | live |

Total live actors: **%d**
`, sys.ID(), actorsys.Local(greeterID).String(), sys.ActorCount())
}

func markdownToHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		fmt.Fprintf(os.Stderr, "topology: markdown render failed, falling back to raw text: %v\n", err)
		return markdown, nil
	}

	return buf.String(), nil
}
