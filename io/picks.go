package io

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/plumb/calib"
	"github.com/phil-mansfield/table"
)

// Pick kinds, as written in the first column of a picks file.
const (
	StarPick  = 0
	PlumbPick = 1
)

func wholeNumber(x float64) (int, bool) {
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return int(x), true
}

// ReadPicks reads the stars and plumb lines from the given picks file. Stars
// are returned in file order and plumb lines are sorted by ID.
func ReadPicks(file string) ([]calib.Star, []calib.PlumbLine, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, nil, err
	}
	return ParsePicks(cols[0], cols[1], cols[2], cols[3])
}

// ParsePicks assembles stars and plumb lines out of the columns of a picks
// file. See ExampleCalibrateFile for the meaning of each column.
func ParsePicks(
	kinds, ids, xs, ys []float64,
) ([]calib.Star, []calib.PlumbLine, error) {
	if len(ids) != len(kinds) || len(xs) != len(kinds) || len(ys) != len(kinds) {
		return nil, nil, fmt.Errorf(
			"Picks columns have lengths %d, %d, %d, and %d.",
			len(kinds), len(ids), len(xs), len(ys),
		)
	}

	stars := []calib.Star{}
	endpoints := map[int][]calib.Pixel{}

	for i := range kinds {
		row := i + 1
		id, ok := wholeNumber(ids[i])
		if !ok {
			return nil, nil, fmt.Errorf(
				"Pick %d has non-integer id %g.", row, ids[i],
			)
		}
		px := calib.Pixel{X: xs[i], Y: ys[i]}

		switch kinds[i] {
		case StarPick:
			stars = append(stars, calib.Star{ID: id, Pixel: px})
		case PlumbPick:
			endpoints[id] = append(endpoints[id], px)
		default:
			return nil, nil, fmt.Errorf(
				"Pick %d has kind %g, but must be %d (star) or %d (plumb line).",
				row, kinds[i], StarPick, PlumbPick,
			)
		}
	}

	ids := make([]int, 0, len(endpoints))
	for id := range endpoints {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := make([]calib.PlumbLine, 0, len(ids))
	for _, id := range ids {
		pxs := endpoints[id]
		if len(pxs) != 2 {
			return nil, nil, fmt.Errorf(
				"Plumb line %d has %d endpoints instead of 2.", id, len(pxs),
			)
		}
		lines = append(lines, calib.PlumbLine{ID: id, A: pxs[0], B: pxs[1]})
	}

	return stars, lines, nil
}
