package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/varalys/vulnlens/internal/patterns"
)

// PrintPatterns renders the signature catalog as a table.
func PrintPatterns(w io.Writer, sigs []patterns.Signature) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Category", "Kind", "Severity", "CWE", "OWASP"})
	for _, s := range sigs {
		id := s.ID
		if s.Custom {
			id += " (custom)"
		}
		if err := table.Append([]string{id, s.Category.String(), s.Kind.String(), s.Severity.String(), s.CWE, owaspShort(s.OWASP)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d patterns\n", len(sigs))
	return err
}

// owaspShort keeps the "A03:2021" prefix of an OWASP category label.
func owaspShort(s string) string {
	if i := strings.Index(s, "-"); i > 0 {
		return s[:i]
	}
	return s
}
