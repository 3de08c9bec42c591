package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
)

// Mermaid renders g as a Mermaid flowchart. Shapes follow the node's
// function: the start node is a circle, the batch variants subroutines,
// Switch and Condition rhombi. When report is not nil the visited nodes
// are highlighted and the last one is marked current.
func (g *Graph) Mermaid(report *Report) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := g.Nodes[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == g.Start:
			opener, closer = "((", "))"
		case node.Function == flow.BatchID || node.Function == flow.ParallelID || node.Function == flow.BatchForEachID:
			opener, closer = "[[", "]]"
		case node.Function == flow.SwitchID || node.Function == flow.ConditionID:
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", safeID, opener, id, node.Function, closer)

		actions := make([]string, 0, len(node.Edges))
		for action := range node.Edges {
			actions = append(actions, action)
		}
		sort.Strings(actions)
		for _, action := range actions {
			arrow := fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(action, "\"", "'"))
			if action == domain.ActionError {
				arrow = "-. \"error\" .->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(node.Edges[action]))
		}
		if node.Next != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID, sanitizeMermaidID(node.Next))
		}
	}

	if report != nil && len(report.Path) > 0 {
		sb.WriteString("\n    %% Run overlay\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range report.Path[:len(report.Path)-1] {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(report.Path[len(report.Path)-1]))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
