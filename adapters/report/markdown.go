package report

import (
	"fmt"
	"strings"

	"lcgwalk/domain/sequence"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
)

// PreviewRows caps how many samples the report lists.
const PreviewRows = 10

// Markdown builds a human-readable summary of a validation session.
func Markdown(s *sequence.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Validation session %s\n\n", s.ID)
	fmt.Fprintf(&b, "- **State:** %s\n", s.State)
	fmt.Fprintf(&b, "- **Generator:** %s\n", s.Config)
	fmt.Fprintf(&b, "- **Samples:** %d\n", s.SampleCount)
	fmt.Fprintf(&b, "- **Significance:** %g\n", s.Alpha)
	fmt.Fprintf(&b, "- **Attempts:** %d of %d (trial seed %d)\n\n", s.Attempt, s.MaxAttempts, s.TrialSeed)

	b.WriteString("## Tests\n\n")
	b.WriteString("| Test | Statistic | Lower | Upper | Verdict |\n")
	b.WriteString("|------|-----------|-------|-------|---------|\n")
	writeOutcome(&b, sequence.TestMean, s.Mean)
	writeOutcome(&b, sequence.TestVariance, s.Variance)
	b.WriteString("\n")

	seq, ok := s.Sequence()
	if !ok {
		if s.HaltedEarly() {
			fmt.Fprintf(&b, "Search halted after %d of %d attempts: %s\n\n", s.Attempt, s.MaxAttempts, s.StopReason)
		}
		b.WriteString("No sequence was accepted. The walk falls back to holding position.\n")
		return b.String()
	}

	values := seq.Values()
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	med, _ := stats.Median(values)
	b.WriteString("## Sequence\n\n")
	fmt.Fprintf(&b, "Min %.5f, median %.5f, max %.5f.\n\n", lo, med, hi)
	fmt.Fprintf(&b, "Artifact sha256 `%s` at %d decimals.\n\n", Checksum(FormatArtifact(seq, DefaultDecimals))[:12], DefaultDecimals)

	n := len(values)
	if n > PreviewRows {
		n = PreviewRows
	}
	b.WriteString("| # | Value |\n|---|-------|\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "| %d | %.5f |\n", i+1, values[i])
	}
	if len(values) > n {
		fmt.Fprintf(&b, "\n%d more values in the artifact.\n", len(values)-n)
	}
	return b.String()
}

func writeOutcome(b *strings.Builder, test sequence.TestKind, o *sequence.ValidationOutcome) {
	if o == nil {
		fmt.Fprintf(b, "| %s | - | - | - | skipped |\n", test)
		return
	}
	if o.Err != nil {
		fmt.Fprintf(b, "| %s | - | - | - | %s (%v) |\n", test, o.Verdict, o.Err)
		return
	}
	fmt.Fprintf(b, "| %s | %.5f | %.5f | %.5f | %s |\n", test, o.Statistic, o.Lower, o.Upper, o.Verdict)
}

// HTML renders the markdown report.
func HTML(s *sequence.Session) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage, Title: "Validation session " + s.ID.String()})
	return markdown.ToHTML([]byte(Markdown(s)), p, renderer)
}
