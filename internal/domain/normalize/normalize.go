// Package normalize convierte los valores libres del historial (pesos, precios, dosis)
// a datos tipados. Todas las funciones son puras y nunca fallan: lo que no se puede
// interpretar vuelve como ok=false o como campo vacío.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
)

var (
	weightUnitsRe  = regexp.MustCompile(`kg|kilos|kilogramos`)
	priceSymbolsRe = regexp.MustCompile(`(?i)[$ars]`)
	leadingNumRe   = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

	frequencyRe = regexp.MustCompile(`cada\s+(\d+)\s*(?:hs?|horas?|h)`)
	fractionRe  = regexp.MustCompile(`(\d+)/(\d+)`)
	mgRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mg`)
	numberRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

const maxWeightKg = 100

// Weight interpreta "19.6", "18 kg", "20 kilos", "19,6" o un número.
// Solo acepta 0 < kg <= 100.
func Weight(input any) (float64, bool) {
	switch v := input.(type) {
	case string:
		return weightFromString(v)
	default:
		f, ok := number(input)
		if !ok {
			return 0, false
		}
		return f, validWeight(f)
	}
}

func weightFromString(s string) (float64, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.TrimSpace(weightUnitsRe.ReplaceAllString(cleaned, ""))

	// "19.600": más de 2 dígitos después del punto => separador de miles
	if parts := strings.Split(cleaned, "."); len(parts) == 2 && len(parts[1]) > 2 {
		cleaned = parts[0] + parts[1]
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	f, ok := parseLeadingFloat(cleaned)
	if !ok {
		return 0, false
	}
	return f, validWeight(f)
}

func validWeight(f float64) bool {
	return !math.IsNaN(f) && f > 0 && f <= maxWeightKg
}

// Price interpreta "4.900", "$ 4.900,50", "ARS 1200" o un número. Acepta valores >= 0.
func Price(input any) (float64, bool) {
	switch v := input.(type) {
	case string:
		return priceFromString(v)
	default:
		f, ok := number(input)
		if !ok || f < 0 {
			return 0, false
		}
		return f, true
	}
}

func priceFromString(s string) (float64, bool) {
	cleaned := strings.TrimSpace(priceSymbolsRe.ReplaceAllString(strings.TrimSpace(s), ""))
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	lit := leadingNumRe.FindString(cleaned)
	if lit == "" {
		return 0, false
	}
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		return 0, false
	}
	if d.Negative && !d.IsZero() {
		return 0, false
	}
	f, err := d.Float64()
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Abs(f), true
}

// MedicationName: "  amoxicilina  dosis" => "Amoxicilina Dosis".
func MedicationName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// MedicationFrequency devuelve cada cuántas horas se toma ("cada 12hs", "2 veces al día").
func MedicationFrequency(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	lower := strings.ToLower(text)

	if m := frequencyRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}

	switch {
	case strings.Contains(lower, "2 veces al día"), strings.Contains(lower, "dos veces al día"):
		return 12, true
	case strings.Contains(lower, "3 veces al día"), strings.Contains(lower, "tres veces al día"):
		return 8, true
	case strings.Contains(lower, "4 veces al día"), strings.Contains(lower, "cuatro veces al día"):
		return 6, true
	}
	return 0, false
}

// Dose es lo que se puede extraer de un texto de dosis. Los punteros nil son "sin dato".
type Dose struct {
	AmountMg *float64
	Amount   *float64
	Unit     string
	Form     string
	Fraction string
}

func (d Dose) IsZero() bool {
	return d.AmountMg == nil && d.Amount == nil && d.Unit == "" && d.Form == "" && d.Fraction == ""
}

// MedicationDose parsea "80mg", "1 comprimido", "1/2 comprimido", "5 ml".
func MedicationDose(text string) Dose {
	s := strings.ToLower(strings.TrimSpace(text))
	var d Dose
	if s == "" {
		return d
	}

	if m := fractionRe.FindStringSubmatch(s); m != nil {
		d.Fraction = m[0]
		num, errN := strconv.ParseFloat(m[1], 64)
		den, errD := strconv.ParseFloat(m[2], 64)
		// con denominador 0 queda solo el texto de la fracción
		if errN == nil && errD == nil && den != 0 {
			amount := num / den
			d.Amount = &amount
		}
	}

	if m := mgRe.FindStringSubmatch(s); m != nil {
		if mg, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.AmountMg = &mg
		}
	}

	if d.Fraction == "" && isZeroOrNil(d.Amount) && isZeroOrNil(d.AmountMg) {
		if m := numberRe.FindStringSubmatch(s); m != nil {
			if n, err := strconv.ParseFloat(m[1], 64); err == nil {
				d.Amount = &n
			}
		}
	}

	switch {
	case strings.Contains(s, "comprimido"):
		d.Unit = "comprimidos"
		d.Form = "comprimido"
	case strings.Contains(s, "ml"):
		d.Unit = "ml"
		d.Form = "líquido"
	case strings.Contains(s, "mg"):
		d.Unit = "mg"
	}
	return d
}

func isZeroOrNil(f *float64) bool {
	return f == nil || *f == 0
}

type Kind string

const (
	KindWeight Kind = "weight"
	KindPrice  Kind = "price"
)

// Disambiguation: Valid=false significa que se eligió el tipo pero el valor no se pudo normalizar.
type Disambiguation struct {
	Kind  Kind
	Value float64
	Valid bool
}

// DisambiguateWeightOrPrice decide si un número suelto es un peso o un precio.
// El contexto (nombre del campo, texto cercano) manda; sin contexto se usa la magnitud.
func DisambiguateWeightOrPrice(value any, context string) Disambiguation {
	ctx := strings.ToLower(context)

	if strings.Contains(ctx, "peso") || strings.Contains(ctx, "kg") || strings.Contains(ctx, "kilo") {
		w, ok := Weight(value)
		return Disambiguation{Kind: KindWeight, Value: w, Valid: ok}
	}
	if strings.Contains(ctx, "precio") || strings.Contains(ctx, "compra") || strings.Contains(ctx, "costo") {
		p, ok := Price(value)
		return Disambiguation{Kind: KindPrice, Value: p, Valid: ok}
	}

	w, wok := Weight(value)
	p, pok := Price(value)

	if pok && p > 50 && (!wok || w < 50) {
		return Disambiguation{Kind: KindPrice, Value: p, Valid: true}
	}
	if wok && w >= 1 && w <= 50 {
		return Disambiguation{Kind: KindWeight, Value: w, Valid: true}
	}
	return Disambiguation{Kind: KindPrice, Value: p, Valid: pok}
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseLeadingFloat lee el número inicial como lo haría un usuario ("18.5abc" => 18.5).
func parseLeadingFloat(s string) (float64, bool) {
	lit := leadingNumRe.FindString(strings.TrimSpace(s))
	if lit == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// overflow de exponente: ParseFloat devuelve ±Inf junto con el error
		if math.IsInf(f, 0) {
			return f, true
		}
		return 0, false
	}
	return f, true
}
