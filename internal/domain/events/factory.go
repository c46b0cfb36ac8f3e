package events

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var leadingFloatRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Meta son los campos comunes opcionales de cualquier evento.
type Meta struct {
	CreatedAt   time.Time // zero => occurredAt
	CreatedBy   string    // "" => "system"
	Source      Source    // "" => manual
	Tags        []string
	Notes       string
	Attachments []Attachment
	LegacyID    string
}

type WeightOptions struct {
	Meta
	Method string
	Place  string
}

type MedicationOptions struct {
	Meta
	Dose         *MedicationDose
	Instructions string
	Indication   string
}

type VisitOptions struct {
	Meta
	Veterinarian string
	Clinic       string
	Reason       string
	Diagnosis    string
	Treatment    string
}

type NoteOptions struct {
	Meta
	Symptoms []string
	Severity Severity
	Text     string
}

type LabOptions struct {
	Meta
	Findings []string
}

// NewEvent arma un evento sin persistir (ID vacío) para cualquier payload.
func NewEvent(data Payload, occurredAt time.Time, meta Meta) Event {
	e := Event{
		OccurredAt:  occurredAt,
		CreatedAt:   meta.CreatedAt,
		CreatedBy:   meta.CreatedBy,
		Source:      meta.Source,
		Tags:        copyStrings(meta.Tags),
		Notes:       meta.Notes,
		Attachments: copyAttachments(meta.Attachments),
		Data:        data,
		LegacyID:    meta.LegacyID,
	}
	if data != nil {
		e.Type = data.EventType()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = occurredAt
	}
	if e.CreatedBy == "" {
		e.CreatedBy = DefaultCreatedBy
	}
	if e.Source == "" {
		e.Source = SourceManual
	}
	return e
}

func NewWeightEvent(weightKg float64, occurredAt time.Time, opts WeightOptions) Event {
	return NewEvent(WeightData{
		WeightKg: weightKg,
		Method:   opts.Method,
		Place:    opts.Place,
	}, occurredAt, opts.Meta)
}

// NewMedicationEvent: occurredAt = startAt. endAt nil => en curso.
func NewMedicationEvent(name string, startAt time.Time, endAt *time.Time, opts MedicationOptions) Event {
	var end *time.Time
	if endAt != nil {
		t := *endAt
		end = &t
	}
	return NewEvent(MedicationData{
		Name:         strings.TrimSpace(name),
		Dose:         opts.Dose,
		StartAt:      startAt,
		EndAt:        end,
		Instructions: opts.Instructions,
		Indication:   opts.Indication,
	}, startAt, opts.Meta)
}

func NewVisitEvent(occurredAt time.Time, opts VisitOptions) Event {
	return NewEvent(VisitData{
		Veterinarian: opts.Veterinarian,
		Clinic:       opts.Clinic,
		Reason:       opts.Reason,
		Diagnosis:    opts.Diagnosis,
		Treatment:    opts.Treatment,
	}, occurredAt, opts.Meta)
}

func NewNoteEvent(occurredAt time.Time, opts NoteOptions) Event {
	return NewEvent(NoteData{
		Symptoms: copyStrings(opts.Symptoms),
		Severity: opts.Severity,
		Text:     opts.Text,
	}, occurredAt, opts.Meta)
}

func NewLabEvent(test, result string, occurredAt time.Time, opts LabOptions) Event {
	return NewEvent(LabData{
		Test:     test,
		Result:   result,
		Findings: copyStrings(opts.Findings),
	}, occurredAt, opts.Meta)
}

// ParseWeightKg coerciona texto de formulario a kg leyendo el número inicial ("18 kg" => 18).
// Devuelve NaN si no hay número; el codec rechaza ese valor al guardar.
func ParseWeightKg(s string) float64 {
	lit := leadingFloatRe.FindString(strings.TrimSpace(s))
	if lit == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}
