// Package surface renders score snapshots for humans and machines.
package surface

import (
	"fmt"
	"io"
	"os"

	"github.com/twealth/twealth/pkg/scoring"
)

// TerminalRenderer renders a ScoreSnapshot as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func bandColor(band string) string {
	if noColor() {
		return ""
	}
	switch band {
	case scoring.BandGreat, scoring.BandGood:
		return colorGreen
	case scoring.BandNeedsWork:
		return colorYellow
	case scoring.BandCritical:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, snap *scoring.ScoreSnapshot) error {
	bc := bandColor(snap.Band)

	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Twealth Index %d — %s", snap.TwealthIndex, colored(snap.Band, bc))))
	fmt.Fprintf(w, "Confidence: %.3f\n\n", snap.Confidence)

	for _, p := range snap.Pillars {
		fmt.Fprintf(w, "%s  %s\n", bold(fmt.Sprintf("%3d", p.Score)), p.Name)
		for _, d := range p.Drivers {
			fmt.Fprintf(w, "      - %s\n", d)
		}
		if p.Action != "" {
			fmt.Fprintf(w, "      %s %s\n", dim("action:"), p.Action)
		}
	}

	fmt.Fprintf(w, "\n%s\n", bold("Overall"))
	for _, d := range snap.Overall.Drivers {
		fmt.Fprintf(w, "  - %s\n", d)
	}
	fmt.Fprintf(w, "  %s %s\n", dim("action:"), snap.Overall.Action)

	return nil
}
