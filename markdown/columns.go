package markdown

import (
	"math"
	"sort"
)

// minBlocksForColumns is the minimum number of blocks with real geometry
// required before two-column detection is attempted.
const minBlocksForColumns = 6

// detectColumns looks for a two-column page layout by finding the single
// largest gap between sorted horizontal block centers. It returns whether
// two columns were detected and the x split point between them. The
// result is independent of the input block order.
func detectColumns(blocks []block, gapThreshold float64) (bool, float64) {
	centers := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		if b.box.IsEmpty() {
			continue
		}
		centers = append(centers, b.box.CenterX())
	}
	if len(centers) < minBlocksForColumns {
		return false, 0.5
	}
	sort.Float64s(centers)

	biggest, idx := 0.0, -1
	for i := 0; i < len(centers)-1; i++ {
		if gap := centers[i+1] - centers[i]; gap > biggest {
			biggest, idx = gap, i
		}
	}
	if idx < 0 || biggest < gapThreshold {
		return false, 0.5
	}
	return true, (centers[idx] + centers[idx+1]) / 2
}

// columnOf assigns a block to column 0 or 1 relative to the split point.
func columnOf(b block, splitX float64) int {
	if b.box.CenterX() <= splitX {
		return 0
	}
	return 1
}

// orderBlocks sorts blocks into reading order: (column, y, x) in
// two-column mode, (y, x) otherwise. Coordinates are rounded to four
// decimals so float noise cannot flip tie-breaks; the sort is stable so
// equal keys keep assembly order (tables, key-value groups, then text).
func orderBlocks(blocks []block, twoCol bool, splitX float64) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if twoCol {
			ci, cj := columnOf(blocks[i], splitX), columnOf(blocks[j], splitX)
			if ci != cj {
				return ci < cj
			}
		}
		yi, yj := round4(blocks[i].y), round4(blocks[j].y)
		if yi != yj {
			return yi < yj
		}
		return round4(blocks[i].x) < round4(blocks[j].x)
	})
}

// sortFieldRows orders form fields by rounded (y, x) before grouping.
func sortFieldRows(rows []fieldRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		yi, yj := round4(rows[i].y), round4(rows[j].y)
		if yi != yj {
			return yi < yj
		}
		return round4(rows[i].x) < round4(rows[j].x)
	})
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
