package domain

import (
	"math"
	"strconv"
	"strings"

	"chronicle_backend/internal/feature/ratings/domain/entity"
)

// Mean returns the arithmetic mean of the rating values, or 0 for an empty list.
func Mean(ratings []entity.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// RoundHalf rounds to the nearest 0.5, ties upward.
func RoundHalf(x float64) float64 {
	return math.Floor(x*2+0.5) / 2
}

// FormatAverage formats the mean of ratings with one decimal.
// With round set the mean is first rounded to the nearest 0.5.
// An empty list yields "0.0".
func FormatAverage(ratings []entity.Rating, round bool) string {
	if len(ratings) == 0 {
		return "0.0"
	}
	mean := Mean(ratings)
	if round {
		mean = RoundHalf(mean)
	}
	return FormatOneDecimal(mean)
}

// FormatOneDecimal formats x with one decimal, rounding half away from zero on
// the exact binary value of x (4.25 -> "4.3", 4.35 -> "4.3").
func FormatOneDecimal(x float64) string {
	neg := x < 0
	if neg {
		x = -x
	}
	s := strconv.FormatFloat(x, 'f', 20, 64)
	dot := strings.IndexByte(s, '.')

	tenths, _ := strconv.ParseInt(s[:dot]+s[dot+1:dot+2], 10, 64)
	if s[dot+2] >= '5' {
		tenths++
	}

	out := strconv.FormatInt(tenths/10, 10) + "." + strconv.FormatInt(tenths%10, 10)
	if neg && tenths != 0 {
		out = "-" + out
	}
	return out
}

const (
	starFull  = "★"
	starHalf  = "½"
	starEmpty = "☆"
	maxStars  = 5
)

// RenderStars draws r as five glyphs: full stars, an optional half star for a
// fractional part in [0.25, 0.75), then empty stars. Values are clamped to [0, 5].
func RenderStars(r float64) string {
	if r <= 0 || math.IsNaN(r) {
		return strings.Repeat(starEmpty, maxStars)
	}
	if r > maxStars {
		r = maxStars
	}

	full := int(math.Floor(r))
	frac := r - float64(full)
	half := 0
	if frac >= 0.25 && frac < 0.75 {
		half = 1
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(starFull, full))
	if half == 1 {
		b.WriteString(starHalf)
	}
	b.WriteString(strings.Repeat(starEmpty, maxStars-full-half))
	return b.String()
}
