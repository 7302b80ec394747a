package layout

import "sort"

// Segment is a half-open [Start, End) character range into a document's
// flat text buffer.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the segment covers no characters.
func (s Segment) Empty() bool { return s.Start >= s.End }

// SegmentSet is an ordered list of segments. A normalized set (the output
// of Merge, Union, Subtract, or Intersect) is sorted by Start with no
// overlapping or touching segments.
type SegmentSet []Segment

// Merge sorts the input by start offset and coalesces overlapping or
// touching segments into a minimal disjoint ascending set. The input is
// not modified. Empty input yields nil.
func Merge(segs SegmentSet) SegmentSet {
	if len(segs) == 0 {
		return nil
	}
	sorted := make(SegmentSet, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := SegmentSet{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}

// Union returns the normalized union of two segment sets.
func Union(a, b SegmentSet) SegmentSet {
	combined := make(SegmentSet, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Merge(combined)
}

// Subtract removes every part of exclude from include. include is assumed
// to be sorted and disjoint (a normalized set); exclude may be arbitrary.
// The result is disjoint, ascending, and never contains a segment with
// Start >= End.
func Subtract(include, exclude SegmentSet) SegmentSet {
	if len(include) == 0 {
		return nil
	}
	if len(exclude) == 0 {
		out := make(SegmentSet, len(include))
		copy(out, include)
		return out
	}

	exc := Merge(exclude)
	var out SegmentSet
	for _, in := range include {
		cur := in.Start
		for _, x := range exc {
			if x.End <= cur {
				continue // exclusion entirely before the cursor
			}
			if x.Start >= in.End {
				break // exclusion entirely after this include
			}
			if x.Start > cur {
				out = append(out, Segment{cur, x.Start})
			}
			if x.End > cur {
				cur = x.End
			}
			if cur >= in.End {
				break
			}
		}
		if cur < in.End {
			out = append(out, Segment{cur, in.End})
		}
	}
	return out
}

// Intersect returns the normalized intersection of two segment sets.
func Intersect(a, b SegmentSet) SegmentSet {
	ma, mb := Merge(a), Merge(b)
	var out SegmentSet
	i, j := 0, 0
	for i < len(ma) && j < len(mb) {
		start := ma[i].Start
		if mb[j].Start > start {
			start = mb[j].Start
		}
		end := ma[i].End
		if mb[j].End < end {
			end = mb[j].End
		}
		if start < end {
			out = append(out, Segment{start, end})
		}
		if ma[i].End < mb[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}
