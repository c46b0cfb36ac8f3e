package events

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/docstore"
)

func TestEncodeEvent_OmitsAbsentOptionals(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.FixedZone("ART", -3*3600))
	e := NewWeightEvent(19.6, at, WeightOptions{})

	doc, err := encodeEvent(e)
	require.NoError(t, err)

	data := doc["data"].(map[string]any)
	assert.Equal(t, map[string]any{"weightKg": 19.6}, data)
	assert.NotContains(t, doc, "legacyId")
	assert.Equal(t, time.UTC, doc["occurredAt"].(time.Time).Location())
	require.NoError(t, docstore.Validate(doc))
}

func TestEncodeEvent_MedicationKeepsNullEnd(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	freq := 12
	e := NewMedicationEvent("Omeprazol", start, nil, MedicationOptions{
		Dose: &MedicationDose{Unit: "mg", FrequencyHours: &freq},
	})

	doc, err := encodeEvent(e)
	require.NoError(t, err)

	data := doc["data"].(map[string]any)
	end, present := data["endAt"]
	assert.True(t, present)
	assert.Nil(t, end)
	assert.NotContains(t, data, "instructions")
	assert.Equal(t, map[string]any{"unit": "mg", "frequencyHours": 12}, data["dose"])
}

func TestEncodeEvent_Rejections(t *testing.T) {
	at := time.Now()

	_, err := encodeEvent(Event{Type: EventTypeWeight})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = encodeEvent(Event{Type: "SURGERY", Data: NoteData{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = encodeEvent(Event{Type: EventTypeVisit, Data: NoteData{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = encodeEvent(NewWeightEvent(math.NaN(), at, WeightOptions{}))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, docstore.ErrUnsupported)
}

func TestDecodeEvent_Roundtrip(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)
	amount := 0.5
	e := NewMedicationEvent("Omeprazol", start, &end, MedicationOptions{
		Meta: Meta{Tags: []string{"medicación"}, Notes: "con comida", LegacyID: "r1",
			Attachments: []Attachment{{Type: AttachmentPDF, URL: "https://x/receta.pdf"}}},
		Dose: &MedicationDose{Amount: &amount, Fraction: "1/2", Unit: "comprimidos", Form: "comprimido"},
	})

	doc, err := encodeEvent(e)
	require.NoError(t, err)

	got, err := decodeEvent("id-1", doc)
	require.NoError(t, err)
	e.ID = "id-1"
	assert.Equal(t, e, got)
}

func TestDecodeEvent_LenientNumbers(t *testing.T) {
	doc := docstore.Document{
		"type": "GROOMING",
		"data": map[string]any{"service": "baño", "priceArs": int64(5000)},
	}
	got, err := decodeEvent("g1", doc)
	require.NoError(t, err)

	g := got.Data.(GroomingData)
	require.NotNil(t, g.PriceArs)
	assert.Equal(t, 5000.0, *g.PriceArs)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, []Attachment{}, got.Attachments)

	_, err = decodeEvent("x", docstore.Document{"type": "SURGERY"})
	assert.Error(t, err)
}

func TestEncodePatch(t *testing.T) {
	notes := "actualizado"
	doc, err := encodePatch(EventPatch{Notes: &notes, Data: VisitData{Clinic: "San Roque"}})
	require.NoError(t, err)

	assert.Equal(t, docstore.Document{
		"notes": "actualizado",
		"type":  "VISIT",
		"data":  map[string]any{"clinic": "San Roque"},
	}, doc)
}
