package layout

import "strings"

// TextOf concatenates the buffer slices covered by segs, in order.
// Offsets are clamped to [0, len(buffer)]; out-of-range or reversed
// ranges contribute nothing. An empty segment list yields "".
func TextOf(buffer string, segs SegmentSet) string {
	if len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		start := clamp(s.Start, 0, len(buffer))
		end := clamp(s.End, 0, len(buffer))
		if start < end {
			b.WriteString(buffer[start:end])
		}
	}
	return b.String()
}

// TextFor resolves a layout element's covered text against the document's
// text buffer.
func (d *Document) TextFor(l *Layout) string {
	return TextOf(d.Text, l.Segments())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
