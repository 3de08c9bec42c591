// Package tui renders catalog entries for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// DefinitionMarkdown documents a function as markdown.
func DefinitionMarkdown(def domain.Definition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", def.Name)
	fmt.Fprintf(&b, "`%s`", def.ID)
	if def.Category != "" {
		fmt.Fprintf(&b, " · *%s*", def.Category)
	}
	b.WriteString("\n\n")
	if def.Description != "" {
		b.WriteString(def.Description + "\n\n")
	}

	if len(def.Params) > 0 {
		b.WriteString("## Parameters\n\n")
		b.WriteString("| Name | Type | Required | Default | Description |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, p := range def.Params {
			required := ""
			if p.Required {
				required = "yes"
			}
			def := ""
			if p.Default != nil {
				def = fmt.Sprintf("`%v`", p.Default)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", p.Name, p.Type, required, def, p.Description)
		}
		b.WriteString("\n")
	}

	if len(def.Outputs) > 0 {
		b.WriteString("## Outputs\n\n")
		for _, o := range def.Outputs {
			fmt.Fprintf(&b, "- `%s`\n", o)
		}
		b.WriteString("\n")
	}

	if len(def.Actions) > 0 {
		b.WriteString("## Actions\n\n")
		for _, a := range def.Actions {
			fmt.Fprintf(&b, "- `%s`\n", a)
		}
		b.WriteString("\n")
	}

	return b.String()
}
