package events

import "time"

// CompareTimestamps ordena dos instantes opcionales. Si falta alguno, son iguales (0).
func CompareTimestamps(a, b *time.Time) int {
	if a == nil || b == nil {
		return 0
	}
	return a.Compare(*b)
}
