package profiler

import (
	"math"
	"sort"
)

func meanStd(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(vals)))
}

func minMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// laplacianVariance computes the variance of a 4-neighbour Laplacian
// response over the interior of a w x h crop. Crops narrower than 3 pixels
// in either dimension have no interior and score 0.
func laplacianVariance(vals []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	resp := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := vals[y*w+x]
			lap := vals[(y-1)*w+x] + vals[(y+1)*w+x] + vals[y*w+x-1] + vals[y*w+x+1] - 4*c
			resp = append(resp, lap)
		}
	}
	_, std := meanStd(resp)
	return std * std
}

// edgeDensity flags edge pixels with a Sobel gradient magnitude test:
// magnitude >= high is a strong edge; magnitude >= low counts as an edge
// when an 8-neighbour is strong (single-pass hysteresis). The density is the
// flagged fraction over the whole crop, matching the convention that
// non-interior pixels dilute the ratio.
func edgeDensity(vals []float64, w, h int, low, high float64) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	mag := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := vals[(y-1)*w+x+1] + 2*vals[y*w+x+1] + vals[(y+1)*w+x+1] -
				vals[(y-1)*w+x-1] - 2*vals[y*w+x-1] - vals[(y+1)*w+x-1]
			gy := vals[(y+1)*w+x-1] + 2*vals[(y+1)*w+x] + vals[(y+1)*w+x+1] -
				vals[(y-1)*w+x-1] - 2*vals[(y-1)*w+x] - vals[(y-1)*w+x+1]
			mag[y*w+x] = math.Hypot(gx, gy)
		}
	}

	count := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y*w+x]
			switch {
			case m >= high:
				count++
			case m >= low && hasStrongNeighbor(mag, w, x, y, high):
				count++
			}
		}
	}
	return float64(count) / float64(w*h)
}

func hasStrongNeighbor(mag []float64, w, x, y int, high float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if mag[(y+dy)*w+x+dx] >= high {
				return true
			}
		}
	}
	return false
}
