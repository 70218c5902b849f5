package gitsync

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ProgressFunc receives progress updates inline on the consuming
// goroutine.
type ProgressFunc func(SyncProgress)

// Transfer output has two phases. Lines of the first phase carry the
// compressing prefix and cover the first fifth of the overall range;
// everything else (writing/receiving) covers the remaining four
// fifths.
const (
	compressingPrefix = "Compressing objects:"

	compressWeight = 0.20
	transferWeight = 0.80
	transferBase   = 20.0
)

var (
	percentRe = regexp.MustCompile(`(\d+)%`)
	speedRe   = regexp.MustCompile(`([\d.]+)\s?([KM])iB/s`)
)

// ProgressParser folds streamed transfer-progress lines into a
// monotonic overall percentage plus a transfer speed. The callback
// fires only when the computed percentage strictly exceeds the last
// reported value, so out-of-order diagnostic lines never move the
// needle backwards.
type ProgressParser struct {
	onProgress ProgressFunc
	last       SyncProgress
}

func NewProgressParser(fn ProgressFunc) *ProgressParser {
	return &ProgressParser{onProgress: fn}
}

// Feed consumes one output line and reports whether it was a progress
// line. Non-progress lines are left for the error classifier.
func (p *ProgressParser) Feed(line string) bool {
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		// malformed numeric token, treat as zero but keep the line
		slog.Debug("progress token unparsable", "line", line)
		pct = 0
	}

	var overall float64
	if strings.HasPrefix(strings.TrimSpace(line), compressingPrefix) {
		overall = pct * compressWeight
	} else {
		overall = pct*transferWeight + transferBase
	}
	if overall > 100 {
		overall = 100
	}

	speed := parseSpeed(line)

	if overall > p.last.Percentage {
		p.last = SyncProgress{Percentage: overall, Speed: speed}
		if p.onProgress != nil {
			p.onProgress(p.last)
		}
	}
	return true
}

// Last returns the highest progress reported so far.
func (p *ProgressParser) Last() SyncProgress {
	return p.last
}

// parseSpeed extracts a transfer-speed token (decimal number followed
// by K or M) and normalizes it to bytes per second. Malformed numbers
// yield zero.
func parseSpeed(line string) float64 {
	m := speedRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		slog.Debug("speed token unparsable", "token", m[1])
		return 0
	}
	switch m[2] {
	case "K":
		return v * 1024
	case "M":
		return v * 1024 * 1024
	}
	return 0
}
