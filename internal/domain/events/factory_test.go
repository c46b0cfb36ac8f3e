package events

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeightEvent_Defaults(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	e := NewWeightEvent(19.6, at, WeightOptions{Place: "veterinaria"})

	assert.Equal(t, EventTypeWeight, e.Type)
	assert.Empty(t, e.ID)
	assert.Equal(t, at, e.OccurredAt)
	assert.Equal(t, at, e.CreatedAt)
	assert.Equal(t, "system", e.CreatedBy)
	assert.Equal(t, SourceManual, e.Source)
	assert.Equal(t, []string{}, e.Tags)
	assert.Equal(t, "", e.Notes)
	assert.Equal(t, []Attachment{}, e.Attachments)
	assert.Equal(t, WeightData{WeightKg: 19.6, Place: "veterinaria"}, e.Data)
}

func TestNewMedicationEvent(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	created := start.Add(48 * time.Hour)

	e := NewMedicationEvent("  Omeprazol ", start, nil, MedicationOptions{
		Meta:         Meta{CreatedAt: created, Source: SourceVet, Tags: []string{"medicación"}},
		Instructions: "cada 12hs",
	})

	assert.Equal(t, EventTypeMedication, e.Type)
	assert.Equal(t, start, e.OccurredAt)
	assert.Equal(t, created, e.CreatedAt)
	assert.Equal(t, SourceVet, e.Source)

	md, ok := e.Data.(MedicationData)
	require.True(t, ok)
	assert.Equal(t, "Omeprazol", md.Name)
	assert.Equal(t, start, md.StartAt)
	assert.Nil(t, md.EndAt)
	assert.Equal(t, "cada 12hs", md.Instructions)
	assert.True(t, md.Active(start.AddDate(10, 0, 0)))
}

func TestNewEvent_TagsAreNotShared(t *testing.T) {
	tags := []string{"a"}
	at := time.Now()

	e1 := NewNoteEvent(at, NoteOptions{Meta: Meta{Tags: tags}})
	e2 := NewNoteEvent(at, NoteOptions{Meta: Meta{Tags: tags}})
	e1.Tags[0] = "changed"

	assert.Equal(t, "a", e2.Tags[0])
	assert.Equal(t, "a", tags[0])
}

func TestNewNoteAndLabEvent_EmptyCollections(t *testing.T) {
	at := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	note := NewNoteEvent(at, NoteOptions{})
	assert.Equal(t, NoteData{Symptoms: []string{}, Text: ""}, note.Data)

	lab := NewLabEvent("hemograma", "normal", at, LabOptions{})
	assert.Equal(t, LabData{Test: "hemograma", Result: "normal", Findings: []string{}}, lab.Data)
}

func TestNewEvent_AdHocTypes(t *testing.T) {
	at := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	price := 4900.0

	e := NewEvent(PurchaseData{Item: "alimento", PriceArs: &price}, at, Meta{LegacyID: "r9"})
	assert.Equal(t, EventTypePurchase, e.Type)
	assert.Equal(t, "r9", e.LegacyID)
}

func TestParseWeightKg(t *testing.T) {
	assert.Equal(t, 18.0, ParseWeightKg("18 kg"))
	assert.Equal(t, 19.6, ParseWeightKg(" 19.6"))
	assert.True(t, math.IsNaN(ParseWeightKg("pesado")))
}

func TestCompareTimestamps(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Second)

	assert.Equal(t, -1, CompareTimestamps(&a, &b))
	assert.Equal(t, 1, CompareTimestamps(&b, &a))
	assert.Equal(t, 0, CompareTimestamps(&a, &a))
	assert.Equal(t, 0, CompareTimestamps(nil, &a))
	assert.Equal(t, 0, CompareTimestamps(&a, nil))
}
