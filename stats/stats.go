/*package stats turns noisy samples of a measured quantity into robust point
estimates.

None of the functions here modify the slices passed to them. Empty samples
and samples containing NaN or infinite values are rejected with
ErrInvalidArgument.
*/
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultSigma is the rejection threshold, in standard deviations, used by
// RejectOutliersDefault.
const DefaultSigma = 2.0

// ErrInvalidArgument is wrapped by every error returned for inputs which
// violate a function's preconditions.
var ErrInvalidArgument = errors.New("invalid argument")

// checkSample requires xs to be non-empty and to hold only finite values.
func checkSample(name string, xs []float64) error {
	if len(xs) == 0 {
		return fmt.Errorf("stats: %s of empty sample: %w", name, ErrInvalidArgument)
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf(
				"stats: %s of sample with non-finite element %d (%g): %w",
				name, i, x, ErrInvalidArgument,
			)
		}
	}
	return nil
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if err := checkSample("mean", xs); err != nil {
		return 0, err
	}
	return mean(xs), nil
}

// Std returns the population standard deviation of xs, i.e. the sum of
// squared deviations is divided by len(xs), not len(xs) - 1.
func Std(xs []float64) (float64, error) {
	if err := checkSample("standard deviation", xs); err != nil {
		return 0, err
	}
	return std(xs, mean(xs)), nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func std(xs []float64, mu float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += (x - mu) * (x - mu)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// OutlierMask reports which elements of xs lie strictly closer than sigma
// population standard deviations to the sample mean. An element exactly
// sigma standard deviations away is an outlier. The mean and deviation are
// computed once from the full sample. If every element is equal, none of
// them are outliers.
func OutlierMask(xs []float64, sigma float64) ([]bool, error) {
	if err := checkSample("outlier rejection", xs); err != nil {
		return nil, err
	} else if sigma < 0 || math.IsNaN(sigma) {
		return nil, fmt.Errorf(
			"stats: rejection threshold must be non-negative, but is %g: %w",
			sigma, ErrInvalidArgument,
		)
	}

	mu := mean(xs)
	sd := std(xs, mu)

	ok := make([]bool, len(xs))
	for i, x := range xs {
		ok[i] = sd == 0 || math.Abs(x-mu) < sigma*sd
	}
	return ok, nil
}

// RejectOutliers returns the elements of xs which are not outliers at the
// given sigma threshold (see OutlierMask), in their original order. It is a
// single pass: the remaining values are not filtered again.
func RejectOutliers(xs []float64, sigma float64) ([]float64, error) {
	ok, err := OutlierMask(xs, sigma)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(xs))
	for i := range xs {
		if ok[i] {
			out = append(out, xs[i])
		}
	}
	return out, nil
}

// RejectOutliersDefault calls RejectOutliers with DefaultSigma.
func RejectOutliersDefault(xs []float64) ([]float64, error) {
	return RejectOutliers(xs, DefaultSigma)
}

// Median returns the median of xs. For an even number of elements this is the
// mean of the two central values.
func Median(xs []float64) (float64, error) {
	if err := checkSample("median", xs); err != nil {
		return 0, err
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, nil
	}
	return sorted[mid], nil
}

// RobustEstimate returns the median of the values which survive outlier
// rejection at the given sigma. If rejection removes everything, the median
// of the full sample is returned instead.
func RobustEstimate(xs []float64, sigma float64) (float64, error) {
	kept, err := RejectOutliers(xs, sigma)
	if err != nil {
		return 0, err
	}
	if len(kept) == 0 {
		return Median(xs)
	}
	return Median(kept)
}
