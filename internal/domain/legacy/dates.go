package legacy

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var leadingIntRe = regexp.MustCompile(`^[+-]?\d+`)

// ParseDate interpreta "dd/mm/yy" o "dd/mm/yyyy" en loc. Años < 100 se toman como 20xx.
// Día o mes fuera de rango se normalizan como en time.Date ("32/01/24" => 1 de febrero).
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, ok := leadingInt(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := leadingInt(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := leadingInt(parts[2])
	if !ok {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// FormatDate es la inversa de ParseDate: "dd/mm/yy" en la zona del instante.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/06")
}

// leadingInt lee el entero inicial ("05abc" => 5), ignorando espacios al inicio.
func leadingInt(s string) (int, bool) {
	lit := leadingIntRe.FindString(strings.TrimLeft(s, " \t\n\r"))
	if lit == "" {
		return 0, false
	}
	n, err := strconv.Atoi(lit)
	if err != nil {
		return 0, false
	}
	return n, true
}
