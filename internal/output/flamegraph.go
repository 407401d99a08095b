package output

import (
	"fmt"
	"sort"
	"strings"
)

// LineStall is one source-line's aggregate stall percentage, the kernel
// hotspot chart's unit of data (in place of the teacher's folded call stack).
type LineStall struct {
	SourceLine int
	StallTag   string
	Percent    float64
}

// GenerateStallHotspotSVG renders a horizontal bar chart of per-source-line
// stall percentage (a supplemented, off-by-default feature repurposing the
// teacher's folded-stack flame chart for a different axis: SASS source line
// instead of call-stack depth).
func GenerateStallHotspotSVG(kernel string, lines []LineStall) string {
	if len(lines) == 0 {
		return ""
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].SourceLine < lines[j].SourceLine })

	width := 1200
	barHeight := 18
	height := len(lines)*barHeight + 40

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  .func { font-family: monospace; font-size: 12px; }
  rect:hover { stroke: black; stroke-width: 1; }
</style>
<text x="10" y="20" class="func" style="font-size:14px; font-weight:bold">%s — stall hotspots by source line</text>
`, width, height, kernel))

	colors := []string{"#ff6633", "#ff8855", "#ffaa77", "#ffcc99"}
	chartWidth := float64(width - 220)

	for i, ls := range lines {
		y := 30 + i*barHeight
		barWidth := ls.Percent / 100 * chartWidth
		if barWidth < 1 {
			barWidth = 1
		}
		color := colors[i%len(colors)]
		sb.WriteString(fmt.Sprintf(
			`<text x="10" y="%d" class="func">line %d</text>`+"\n",
			y+barHeight-5, ls.SourceLine))
		sb.WriteString(fmt.Sprintf(
			`<rect x="110" y="%d" width="%.1f" height="%d" fill="%s" rx="1"/>`+"\n",
			y, barWidth, barHeight-2, color))
		sb.WriteString(fmt.Sprintf(
			`<text x="%.1f" y="%d" class="func">%s %.1f%%</text>`+"\n",
			120+barWidth, y+barHeight-5, ls.StallTag, ls.Percent))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// GenerateFoldedStallLines writes a folded "line count" text export, one
// line per source line, suitable for piping to an external charting tool —
// the teacher's GenerateFlameGraphFromFolded adapted from "stack count" to
// "source-line stall-tag count".
func GenerateFoldedStallLines(lines []LineStall) string {
	var sb strings.Builder
	for _, ls := range lines {
		sb.WriteString(fmt.Sprintf("line_%d;%s %.2f\n", ls.SourceLine, ls.StallTag, ls.Percent))
	}
	return sb.String()
}
