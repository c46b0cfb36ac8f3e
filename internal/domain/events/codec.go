package events

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pet-medical-log/internal/ports/docstore"
)

// Codificación Event <-> documento. Es el único camino de escritura:
// los opcionales vacíos no se escriben y todo pasa por docstore.Compact.

func encodeEvent(e Event) (docstore.Document, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidInput)
	}
	if e.Type == "" {
		e.Type = e.Data.EventType()
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, e.Type)
	}
	if e.Data.EventType() != e.Type {
		return nil, fmt.Errorf("%w: type %s with %s data", ErrInvalidInput, e.Type, e.Data.EventType())
	}

	doc := docstore.Document{
		"type":        string(e.Type),
		"occurredAt":  e.OccurredAt.UTC(),
		"createdAt":   e.CreatedAt.UTC(),
		"createdBy":   e.CreatedBy,
		"source":      string(e.Source),
		"tags":        stringList(e.Tags),
		"notes":       e.Notes,
		"attachments": attachmentList(e.Attachments),
		"data":        e.Data.document(),
		"legacyId":    optString(e.LegacyID),
	}
	return finish(doc)
}

func encodePatch(p EventPatch) (docstore.Document, error) {
	doc := docstore.Document{}
	if p.OccurredAt != nil {
		doc["occurredAt"] = p.OccurredAt.UTC()
	}
	if p.CreatedBy != nil {
		doc["createdBy"] = *p.CreatedBy
	}
	if p.Source != nil {
		doc["source"] = string(*p.Source)
	}
	if p.Notes != nil {
		doc["notes"] = *p.Notes
	}
	if p.Tags != nil {
		doc["tags"] = stringList(p.Tags)
	}
	if p.Attachments != nil {
		doc["attachments"] = attachmentList(p.Attachments)
	}
	if p.Data != nil {
		doc["type"] = string(p.Data.EventType())
		doc["data"] = p.Data.document()
	}
	return finish(doc)
}

func finish(doc docstore.Document) (docstore.Document, error) {
	doc = docstore.Compact(doc)
	if err := docstore.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return doc, nil
}

func (d WeightData) document() map[string]any {
	return map[string]any{
		"weightKg": d.WeightKg,
		"method":   optString(d.Method),
		"place":    optString(d.Place),
	}
}

func (d MedicationDose) document() map[string]any {
	m := map[string]any{
		"amountMg": optFloat(d.AmountMg),
		"amount":   optFloat(d.Amount),
		"unit":     optString(d.Unit),
		"form":     optString(d.Form),
		"fraction": optString(d.Fraction),
	}
	if d.FrequencyHours != nil {
		m["frequencyHours"] = *d.FrequencyHours
	} else {
		m["frequencyHours"] = docstore.Undefined
	}
	return m
}

func (d MedicationData) document() map[string]any {
	m := map[string]any{
		"name":         strings.TrimSpace(d.Name),
		"startAt":      d.StartAt.UTC(),
		"endAt":        nil,
		"instructions": optString(d.Instructions),
		"indication":   optString(d.Indication),
		"dose":         docstore.Undefined,
	}
	if d.Dose != nil {
		m["dose"] = d.Dose.document()
	}
	if d.EndAt != nil {
		m["endAt"] = d.EndAt.UTC()
	}
	return m
}

func (d DoseData) document() map[string]any {
	return map[string]any{
		"medicationName": d.MedicationName,
		"amount":         optString(d.Amount),
		"unit":           optString(d.Unit),
		"timeHint":       optString(d.TimeHint),
	}
}

func (d VisitData) document() map[string]any {
	return map[string]any{
		"veterinarian": optString(d.Veterinarian),
		"clinic":       optString(d.Clinic),
		"reason":       optString(d.Reason),
		"diagnosis":    optString(d.Diagnosis),
		"treatment":    optString(d.Treatment),
	}
}

func (d NoteData) document() map[string]any {
	return map[string]any{
		"symptoms": stringList(d.Symptoms),
		"severity": optString(string(d.Severity)),
		"text":     d.Text,
	}
}

func (d LabData) document() map[string]any {
	return map[string]any{
		"test":     d.Test,
		"result":   d.Result,
		"findings": stringList(d.Findings),
	}
}

func (d ImagingData) document() map[string]any {
	m := map[string]any{
		"study":      d.Study,
		"summary":    d.Summary,
		"structured": docstore.Undefined,
	}
	if len(d.Structured) > 0 {
		m["structured"] = map[string]any(docstore.Clone(d.Structured))
	}
	return m
}

func (d FoodData) document() map[string]any {
	ingredients := make([]any, 0, len(d.Ingredients))
	for _, in := range d.Ingredients {
		ingredients = append(ingredients, map[string]any{
			"name":  in.Name,
			"grams": optFloat(in.Grams),
			"ml":    optFloat(in.ML),
			"notes": optString(in.Notes),
		})
	}
	return map[string]any{
		"kind":        string(d.Kind),
		"ingredients": ingredients,
	}
}

func (d GroomingData) document() map[string]any {
	return map[string]any{
		"service":  d.Service,
		"place":    optString(d.Place),
		"priceArs": optFloat(d.PriceArs),
	}
}

func (d PurchaseData) document() map[string]any {
	return map[string]any{
		"item":     d.Item,
		"priceArs": optFloat(d.PriceArs),
	}
}

func optString(s string) any {
	if s == "" {
		return docstore.Undefined
	}
	return s
}

func optFloat(f *float64) any {
	if f == nil {
		return docstore.Undefined
	}
	return *f
}

func stringList(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func attachmentList(in []Attachment) []any {
	out := make([]any, 0, len(in))
	for _, a := range in {
		out = append(out, map[string]any{
			"type":    string(a.Type),
			"url":     a.URL,
			"caption": optString(a.Caption),
		})
	}
	return out
}

// ---- decode ----

var errBadDocument = errors.New("malformed event document")

func decodeEvent(id string, doc docstore.Document) (Event, error) {
	t := EventType(str(doc, "type"))
	if !t.Valid() {
		return Event{}, fmt.Errorf("%w: unknown type %q", errBadDocument, t)
	}
	data, _ := doc["data"].(map[string]any)
	payload := decodePayload(t, data)

	e := Event{
		ID:         id,
		Type:       t,
		OccurredAt: timeOf(doc, "occurredAt"),
		CreatedAt:  timeOf(doc, "createdAt"),
		CreatedBy:  str(doc, "createdBy"),
		Source:     Source(str(doc, "source")),
		Tags:       strs(doc, "tags"),
		Notes:      str(doc, "notes"),
		Data:       payload,
		LegacyID:   str(doc, "legacyId"),
	}
	if list, ok := doc["attachments"].([]any); ok {
		e.Attachments = make([]Attachment, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			e.Attachments = append(e.Attachments, Attachment{
				Type:    AttachmentType(str(m, "type")),
				URL:     str(m, "url"),
				Caption: str(m, "caption"),
			})
		}
	} else {
		e.Attachments = []Attachment{}
	}
	return e, nil
}

func decodePayload(t EventType, m map[string]any) Payload {
	switch t {
	case EventTypeWeight:
		w := WeightData{Method: str(m, "method"), Place: str(m, "place")}
		if f := floatOf(m, "weightKg"); f != nil {
			w.WeightKg = *f
		}
		return w
	case EventTypeMedication:
		md := MedicationData{
			Name:         str(m, "name"),
			StartAt:      timeOf(m, "startAt"),
			Instructions: str(m, "instructions"),
			Indication:   str(m, "indication"),
		}
		if end, ok := m["endAt"].(time.Time); ok {
			md.EndAt = &end
		}
		if dm, ok := m["dose"].(map[string]any); ok {
			dose := MedicationDose{
				AmountMg: floatOf(dm, "amountMg"),
				Amount:   floatOf(dm, "amount"),
				Unit:     str(dm, "unit"),
				Form:     str(dm, "form"),
				Fraction: str(dm, "fraction"),
			}
			if f := floatOf(dm, "frequencyHours"); f != nil {
				h := int(*f)
				dose.FrequencyHours = &h
			}
			md.Dose = &dose
		}
		return md
	case EventTypeDose:
		return DoseData{
			MedicationName: str(m, "medicationName"),
			Amount:         str(m, "amount"),
			Unit:           str(m, "unit"),
			TimeHint:       str(m, "timeHint"),
		}
	case EventTypeVisit:
		return VisitData{
			Veterinarian: str(m, "veterinarian"),
			Clinic:       str(m, "clinic"),
			Reason:       str(m, "reason"),
			Diagnosis:    str(m, "diagnosis"),
			Treatment:    str(m, "treatment"),
		}
	case EventTypeNote:
		return NoteData{Symptoms: strs(m, "symptoms"), Severity: Severity(str(m, "severity")), Text: str(m, "text")}
	case EventTypeLab:
		return LabData{Test: str(m, "test"), Result: str(m, "result"), Findings: strs(m, "findings")}
	case EventTypeImaging:
		img := ImagingData{Study: str(m, "study"), Summary: str(m, "summary")}
		if s, ok := m["structured"].(map[string]any); ok {
			img.Structured = s
		}
		return img
	case EventTypeFood:
		f := FoodData{Kind: FoodKind(str(m, "kind")), Ingredients: []Ingredient{}}
		if list, ok := m["ingredients"].([]any); ok {
			for _, item := range list {
				im, ok := item.(map[string]any)
				if !ok {
					continue
				}
				f.Ingredients = append(f.Ingredients, Ingredient{
					Name:  str(im, "name"),
					Grams: floatOf(im, "grams"),
					ML:    floatOf(im, "ml"),
					Notes: str(im, "notes"),
				})
			}
		}
		return f
	case EventTypeGrooming:
		return GroomingData{Service: str(m, "service"), Place: str(m, "place"), PriceArs: floatOf(m, "priceArs")}
	case EventTypePurchase:
		return PurchaseData{Item: str(m, "item"), PriceArs: floatOf(m, "priceArs")}
	}
	return nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func strs(m map[string]any, key string) []string {
	out := []string{}
	switch list := m[key].(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, list...)
	}
	return out
}

func floatOf(m map[string]any, key string) *float64 {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// timeOf acepta time.Time o un string RFC3339 (documentos cargados a mano).
func timeOf(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
