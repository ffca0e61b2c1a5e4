package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/schollz/progressbar/v3"
)

// Progress draws one progress bar per campaign worksheet during the decision pass.
type Progress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

var _ engine.Progress = (*Progress)(nil)

// NewProgress creates a progress observer writing to writer.
func NewProgress(writer io.Writer) *Progress {
	if writer == nil {
		writer = os.Stderr
	}
	return &Progress{writer: writer}
}

// SheetStarted starts a bar for a worksheet of rows rows.
func (p *Progress) SheetStarted(name string, rows int) {
	p.bar = nil
	if rows <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(rows,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]%s[reset]", name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// RowProcessed advances the current bar.
func (p *Progress) RowProcessed() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// SheetFinished completes the current bar.
func (p *Progress) SheetFinished() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.bar = nil
}
