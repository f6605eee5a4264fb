package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatTimestampSRT renders seconds as HH:MM:SS,mmm.
func formatTimestampSRT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// formatTimestampVTT renders seconds as HH:MM:SS.mmm.
func formatTimestampVTT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// formatTimestampASS renders seconds as H:MM:SS.cc (centiseconds, no leading
// zero on hours).
func formatTimestampASS(seconds float64) string {
	total := int64(math.Round(seconds * 100))
	cs := total % 100
	rest := total / 100
	h := rest / 3600
	m := (rest % 3600) / 60
	s := rest % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func splitMillis(seconds float64) (h, m, s, ms int64) {
	total := int64(math.Round(seconds * 1000))
	ms = total % 1000
	rest := total / 1000
	return rest / 3600, (rest % 3600) / 60, rest % 60, ms
}

// parseTimestamp accepts both SRT (comma) and VTT (dot) millisecond
// separators and returns seconds.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.SplitN(value, ",", 2)
	fraction := "0"
	if len(timeParts) == 2 {
		fraction = timeParts[1]
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(padMillis(fraction))
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// padMillis normalizes a fractional-second field to exactly three digits.
func padMillis(fraction string) string {
	fraction = strings.TrimSpace(fraction)
	if len(fraction) > 3 {
		return fraction[:3]
	}
	for len(fraction) < 3 {
		fraction += "0"
	}
	return fraction
}
