package main

import (
	"fmt"
	"strings"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
)

// renderReport describes a resolution outcome as markdown
func renderReport(path, url string, o *domain.ResolutionOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", path)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| URL | %s |\n", url)
	fmt.Fprintf(&b, "| Primary method | %s |\n", orNone(o.PrimaryMethod))
	fmt.Fprintf(&b, "| Succeeded method | %s |\n", o.Label())
	fmt.Fprintf(&b, "| Status | %s |\n", o.Status())

	if len(o.Methods) > 0 {
		b.WriteString("\n## Method chain\n\n")
		for i, m := range o.Methods {
			fmt.Fprintf(&b, "%d. %s\n", i+1, methodLine(m))
		}
	}

	if o.ResolvedXML != "" {
		b.WriteString("\n## Resolved XML\n\n")
		writeXML(&b, o.ResolvedXML)
	}

	if o.Compared {
		b.WriteString("\n## Reference XML\n\n")
		if o.ReferenceXML == nil {
			b.WriteString("_Unable to obtain reference XML._\n")
		} else {
			writeXML(&b, *o.ReferenceXML)
		}
	}

	return b.String()
}

func methodLine(m domain.MethodOutcome) string {
	if !m.Configured() {
		return fmt.Sprintf("`%s`: N/A", m.MethodName)
	}
	name := "`" + m.MethodName + "`"
	if *m.Config != "" {
		name += fmt.Sprintf(" (%s)", *m.Config)
	}
	if m.ErrorInfo != nil {
		return fmt.Sprintf("%s: error: %s", name, *m.ErrorInfo)
	}
	return name + ": ok"
}

func writeXML(b *strings.Builder, raw string) {
	b.WriteString("```xml\n")
	b.WriteString(strings.TrimRight(components.FormatXML(raw), "\n"))
	b.WriteString("\n```\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
