package transcriber

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reSrtIndex = regexp.MustCompile(`^\d+$`)
	reSrtTime  = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
)

// ParseSRT reads SubRip cues into segments. Multi-line cue text is joined with spaces.
func ParseSRT(content string) []Segment {
	var (
		segments []Segment
		cur      *Segment
		lines    []string
	)

	flush := func() {
		if cur != nil && len(lines) > 0 {
			cur.Text = strings.Join(lines, " ")
			segments = append(segments, *cur)
		}
		cur = nil
		lines = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case cur == nil && reSrtIndex.MatchString(trimmed):
			// cue number
		case reSrtTime.MatchString(trimmed):
			flush()
			m := reSrtTime.FindStringSubmatch(trimmed)
			cur = &Segment{Start: srtDuration(m[1:5]), End: srtDuration(m[5:9])}
		case cur != nil:
			lines = append(lines, trimmed)
		}
	}
	flush()

	return segments
}

func srtDuration(parts []string) time.Duration {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond
}
