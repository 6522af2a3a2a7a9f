package captions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as an ASS timestamp "H:MM:SS.ss". Hours are
// not padded. The value is rounded to whole centiseconds before it is split,
// so 59.999 becomes "0:01:00.00". Rounding follows the exact binary value with
// ties to even, the same as "%.2f": 0.125 becomes "0.12". Negative and
// non-finite input clamps to zero.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	fixed := strconv.FormatFloat(seconds, 'f', 2, 64)
	cs, err := strconv.ParseInt(strings.Replace(fixed, ".", "", 1), 10, 64)
	if err != nil {
		// Beyond int64 centiseconds; clamp.
		cs = math.MaxInt64
	}
	hours := cs / 360000
	cs %= 360000
	minutes := cs / 6000
	cs %= 6000
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, cs/100, cs%100)
}
