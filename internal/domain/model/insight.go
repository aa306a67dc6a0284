package model

import (
	"regexp"
	"strings"
)

// Insight is one label/value pair pulled out of a free-text research brief.
type Insight struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InsightOptions configures the extraction heuristics. The defaults mirror
// what the dashboard renders: at most four insights, with boilerplate section
// headers skipped.
type InsightOptions struct {
	MaxInsights int
	SkipLabels  []string
}

func DefaultInsightOptions() InsightOptions {
	return InsightOptions{
		MaxInsights: 4,
		SkipLabels: []string{
			"overview", "summary", "key insights", "introduction",
			"about", "table of contents", "sources", "conclusion",
		},
	}
}

var (
	labelValueRe = regexp.MustCompile(`^([^:|]{2,60}?)\s*:\s+(.+)$`)
	tableSepRe   = regexp.MustCompile(`^\|[\s:|-]+\|$`)
	mdNoiseRe    = regexp.MustCompile(`[*_` + "`" + `]`)
)

// ExtractInsights scans a markdown-ish brief for label/value lines and
// two-column table rows. It is a pure function; heuristics live in opts so
// they can be tuned without touching the parser.
func ExtractInsights(text string, opts InsightOptions) []Insight {
	if opts.MaxInsights <= 0 {
		opts.MaxInsights = DefaultInsightOptions().MaxInsights
	}
	skip := make(map[string]bool, len(opts.SkipLabels))
	for _, s := range opts.SkipLabels {
		skip[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var out []Insight
	for _, line := range strings.Split(text, "\n") {
		if len(out) >= opts.MaxInsights {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if label, value, ok := parseTableRow(line); ok {
			appendInsight(&out, label, value, skip)
			continue
		}
		line = mdNoiseRe.ReplaceAllString(stripListMarkers(line), "")
		if m := labelValueRe.FindStringSubmatch(line); m != nil {
			appendInsight(&out, m[1], m[2], skip)
		}
	}
	return out
}

func appendInsight(out *[]Insight, label, value string, skip map[string]bool) {
	label = strings.TrimSpace(mdNoiseRe.ReplaceAllString(label, ""))
	value = strings.TrimSpace(mdNoiseRe.ReplaceAllString(value, ""))
	if label == "" || value == "" || skip[strings.ToLower(label)] {
		return
	}
	*out = append(*out, Insight{Label: label, Value: value})
}

// parseTableRow handles "| label | value |" rows, ignoring header separators.
func parseTableRow(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
		return "", "", false
	}
	if tableSepRe.MatchString(line) {
		return "", "", false
	}
	cells := strings.Split(strings.Trim(line, "|"), "|")
	if len(cells) != 2 {
		return "", "", false
	}
	return cells[0], cells[1], true
}

// stripListMarkers removes heading and bullet prefixes so "- **Industry:** x"
// and "## Industry: x" both parse.
func stripListMarkers(line string) string {
	line = strings.TrimLeft(line, "#>")
	line = strings.TrimSpace(line)
	for _, p := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, p) {
			line = strings.TrimSpace(line[len(p):])
			break
		}
	}
	// numbered bullets: "1. thing"
	if i := strings.IndexByte(line, '.'); i > 0 && i <= 3 {
		if n := strings.TrimSpace(line[:i]); isDigits(n) {
			line = strings.TrimSpace(line[i+1:])
		}
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
