package formatters

// ComplexityColor buckets a complexity score into a fill color, green for simple files through red.
func ComplexityColor(complexity float64) string {
	switch {
	case complexity <= 5:
		return "#22c55e"
	case complexity <= 10:
		return "#84cc16"
	case complexity <= 15:
		return "#eab308"
	case complexity <= 20:
		return "#f97316"
	default:
		return "#ef4444"
	}
}
