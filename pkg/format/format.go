package format

import "strconv"

// Count renders a large count in compact display form: 1234567 → "1.2M",
// 45200 → "45.2K", 999 → "999".
func Count(n int64) string {
	switch {
	case n >= 1_000_000:
		return scaled(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return scaled(float64(n)/1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func scaled(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
