package events

import "time"

// Payload es el contenido específico de cada tipo de evento.
// Está sellada: solo los tipos de este paquete la implementan.
type Payload interface {
	EventType() EventType
	document() map[string]any
}

type WeightData struct {
	WeightKg float64 `json:"weightKg"`
	Method   string  `json:"method,omitempty"`
	Place    string  `json:"place,omitempty"`
}

type MedicationDose struct {
	AmountMg       *float64 `json:"amountMg,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	FrequencyHours *int     `json:"frequencyHours,omitempty"`
	Form           string   `json:"form,omitempty"`
	Fraction       string   `json:"fraction,omitempty"`
}

type MedicationData struct {
	Name    string          `json:"name"`
	Dose    *MedicationDose `json:"dose,omitempty"`
	StartAt time.Time       `json:"startAt"`
	// EndAt nil = tratamiento en curso.
	EndAt        *time.Time `json:"endAt"`
	Instructions string     `json:"instructions,omitempty"`
	Indication   string     `json:"indication,omitempty"`
}

// Active indica si el tratamiento sigue vigente en at.
func (m MedicationData) Active(at time.Time) bool {
	return m.EndAt == nil || !m.EndAt.Before(at)
}

type DoseData struct {
	MedicationName string `json:"medicationName"`
	Amount         string `json:"amount,omitempty"`
	Unit           string `json:"unit,omitempty"`
	TimeHint       string `json:"timeHint,omitempty"`
}

type VisitData struct {
	Veterinarian string `json:"veterinarian,omitempty"`
	Clinic       string `json:"clinic,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Treatment    string `json:"treatment,omitempty"`
}

type NoteData struct {
	Symptoms []string `json:"symptoms"`
	Severity Severity `json:"severity,omitempty"`
	Text     string   `json:"text"`
}

type LabData struct {
	Test     string   `json:"test"`
	Result   string   `json:"result"`
	Findings []string `json:"findings"`
}

type ImagingData struct {
	Study      string         `json:"study"`
	Summary    string         `json:"summary"`
	Structured map[string]any `json:"structured,omitempty"`
}

type Ingredient struct {
	Name  string   `json:"name"`
	Grams *float64 `json:"grams,omitempty"`
	ML    *float64 `json:"ml,omitempty"`
	Notes string   `json:"notes,omitempty"`
}

type FoodData struct {
	Kind        FoodKind     `json:"kind"`
	Ingredients []Ingredient `json:"ingredients"`
}

type GroomingData struct {
	Service  string   `json:"service"`
	Place    string   `json:"place,omitempty"`
	PriceArs *float64 `json:"priceArs,omitempty"`
}

type PurchaseData struct {
	Item     string   `json:"item"`
	PriceArs *float64 `json:"priceArs,omitempty"`
}

func (WeightData) EventType() EventType     { return EventTypeWeight }
func (MedicationData) EventType() EventType { return EventTypeMedication }
func (DoseData) EventType() EventType       { return EventTypeDose }
func (VisitData) EventType() EventType      { return EventTypeVisit }
func (NoteData) EventType() EventType       { return EventTypeNote }
func (LabData) EventType() EventType        { return EventTypeLab }
func (ImagingData) EventType() EventType    { return EventTypeImaging }
func (FoodData) EventType() EventType       { return EventTypeFood }
func (GroomingData) EventType() EventType   { return EventTypeGrooming }
func (PurchaseData) EventType() EventType   { return EventTypePurchase }

// newPayload devuelve un puntero al struct vacío del tipo (para decodificar JSON de la API).
func newPayload(t EventType) (Payload, bool) {
	switch t {
	case EventTypeWeight:
		return &WeightData{}, true
	case EventTypeMedication:
		return &MedicationData{}, true
	case EventTypeDose:
		return &DoseData{}, true
	case EventTypeVisit:
		return &VisitData{}, true
	case EventTypeNote:
		return &NoteData{}, true
	case EventTypeLab:
		return &LabData{}, true
	case EventTypeImaging:
		return &ImagingData{}, true
	case EventTypeFood:
		return &FoodData{}, true
	case EventTypeGrooming:
		return &GroomingData{}, true
	case EventTypePurchase:
		return &PurchaseData{}, true
	}
	return nil, false
}

// deref convierte el puntero que usa el decoder JSON al valor que guarda Event.Data.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *WeightData:
		return *v
	case *MedicationData:
		return *v
	case *DoseData:
		return *v
	case *VisitData:
		return *v
	case *NoteData:
		return *v
	case *LabData:
		return *v
	case *ImagingData:
		return *v
	case *FoodData:
		return *v
	case *GroomingData:
		return *v
	case *PurchaseData:
		return *v
	}
	return p
}
