package cliapp

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/lytics/dev-agent/internal/progressreport"
)

// barReporter renders progressreport.Report updates as a progress bar, one bar
// per phase, ported from the teacher's CLIProgressReporter
// (internal/cli/progress.go).
type barReporter struct {
	bar   *progressbar.ProgressBar
	phase progressreport.Phase
}

func newBarReporter() progressreport.Reporter {
	r := &barReporter{}
	return progressreport.ReporterFunc(r.Report)
}

func (r *barReporter) Report(report progressreport.Report) {
	if report.Phase != r.phase {
		if r.bar != nil {
			r.bar.Finish()
			fmt.Println()
		}
		r.phase = report.Phase
		r.bar = progressbar.NewOptions(report.TotalDocuments,
			progressbar.OptionSetDescription(phaseLabel(report.Phase)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("docs/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}
	if r.bar != nil {
		r.bar.Set(report.DocumentsIndexed)
	}
	if report.Phase == progressreport.PhaseComplete && r.bar != nil {
		r.bar.Finish()
		fmt.Println()
	}
}

func phaseLabel(p progressreport.Phase) string {
	switch p {
	case progressreport.PhaseScanning:
		return "Scanning files"
	case progressreport.PhaseEmbedding:
		return "Embedding documents"
	case progressreport.PhaseStoring:
		return "Storing vectors"
	default:
		return "Indexing"
	}
}
