package billing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Numbering mints "{fiscalCode}-{seq}" invoice numbers, e.g. "2526-07".
// LegacyPrefixes are older constant prefixes ("INV-2526-03") that still count
// toward a fiscal year's sequence.
type Numbering struct {
	StartMonth     time.Month
	LegacyPrefixes []string
}

// NewNumbering returns a Numbering with legacy prefixes sorted longest first,
// so "INV-" is tried before "INV".
func NewNumbering(startMonth time.Month, legacyPrefixes []string) Numbering {
	if startMonth < time.January || startMonth > time.December {
		startMonth = time.April
	}
	prefixes := make([]string, 0, len(legacyPrefixes))
	for _, p := range legacyPrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	sort.SliceStable(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return Numbering{StartMonth: startMonth, LegacyPrefixes: prefixes}
}

// FiscalStartYear is the calendar year the fiscal year containing t began in.
func (n Numbering) FiscalStartYear(t time.Time) int {
	if t.Month() >= n.StartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// FiscalCode is the last two digits of the start and end years, e.g. "2526".
func (n Numbering) FiscalCode(t time.Time) string {
	start := n.FiscalStartYear(t)
	return fmt.Sprintf("%02d%02d", start%100, (start+1)%100)
}

// Format renders a sequence padded to at least two digits.
func Format(code string, seq int) string {
	return fmt.Sprintf("%s-%02d", code, seq)
}

// Parse extracts the sequence from an invoice number of the given fiscal code,
// with or without a legacy prefix.
func (n Numbering) Parse(invoiceNo, code string) (int, bool) {
	rest := invoiceNo
	if !strings.HasPrefix(rest, code+"-") {
		matched := false
		for _, p := range n.LegacyPrefixes {
			if strings.HasPrefix(rest, p+code+"-") {
				rest = rest[len(p):]
				matched = true
				break
			}
		}
		if !matched {
			return 0, false
		}
	}
	digits := rest[len(code)+1:]
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}

// LikeEscape is the escape character Patterns uses for LIKE wildcards.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// Patterns are SQL LIKE patterns that find every candidate number of a code.
// Wildcards inside prefixes are escaped with LikeEscape.
func (n Numbering) Patterns(code string) []string {
	out := []string{likeEscaper.Replace(code) + "-%"}
	for _, p := range n.LegacyPrefixes {
		out = append(out, likeEscaper.Replace(p+code)+"-%")
	}
	return out
}

// MaxSequence is the highest sequence among existing numbers for code.
func (n Numbering) MaxSequence(code string, existing []string) int {
	highest := 0
	for _, no := range existing {
		if seq, ok := n.Parse(no, code); ok && seq > highest {
			highest = seq
		}
	}
	return highest
}

// Next returns the number following the existing ones for the fiscal year of t.
func (n Numbering) Next(t time.Time, existing []string) (string, int) {
	code := n.FiscalCode(t)
	seq := n.MaxSequence(code, existing) + 1
	return Format(code, seq), seq
}
