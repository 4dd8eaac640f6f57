// Package lyrics turns embedded timestamped lyric text into timed cues.
//
// Input lines look like "[mm:ss.cc]text". Lines that do not match are
// filtered out, not errors: a fully unparsable blob simply yields no cues.
package lyrics

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Cue is one timed lyric entry.
type Cue struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

var cueLine = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2})\](.*)$`)

// Parse returns a lazy, restartable sequence of cues in original line order.
// Cues are not re-sorted by time.
func Parse(text string) iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimRight(line, "\r\n")
			m := cueLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			minutes, _ := strconv.Atoi(m[1])
			seconds, _ := strconv.Atoi(m[2])
			centis, _ := strconv.Atoi(m[3])
			cue := Cue{
				Time: float64(60*minutes+seconds) + float64(centis)/100,
				Text: m[4],
			}
			if !yield(cue) {
				return
			}
		}
	}
}

// Cues collects the parsed sequence into a slice.
func Cues(text string) []Cue {
	out := make([]Cue, 0)
	for cue := range Parse(text) {
		out = append(out, cue)
	}
	return out
}
