package events

type EventType string

const (
	EventTypeWeight     EventType = "WEIGHT"
	EventTypeMedication EventType = "MEDICATION"
	EventTypeDose       EventType = "DOSE"
	EventTypeVisit      EventType = "VISIT"
	EventTypeLab        EventType = "LAB"
	EventTypeImaging    EventType = "IMAGING"
	EventTypeFood       EventType = "FOOD"
	EventTypeGrooming   EventType = "GROOMING"
	EventTypePurchase   EventType = "PURCHASE"
	EventTypeNote       EventType = "NOTE"
)

var eventTypes = []EventType{
	EventTypeWeight,
	EventTypeMedication,
	EventTypeDose,
	EventTypeVisit,
	EventTypeLab,
	EventTypeImaging,
	EventTypeFood,
	EventTypeGrooming,
	EventTypePurchase,
	EventTypeNote,
}

// EventTypes devuelve los tipos válidos en orden fijo.
func EventTypes() []EventType {
	out := make([]EventType, len(eventTypes))
	copy(out, eventTypes)
	return out
}

func (t EventType) Valid() bool {
	for _, v := range eventTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Source string

const (
	SourceManual Source = "manual"
	SourceVet    Source = "vet"
	// SourceWhatsApp: eventos que llegan por el canal externo de mensajería.
	SourceWhatsApp Source = "whatsapp"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceVet, SourceWhatsApp:
		return true
	}
	return false
}

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentAudio AttachmentType = "audio"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type FoodKind string

const (
	FoodKindRecipe FoodKind = "RECIPE"
	FoodKindRation FoodKind = "RATION"
)

// DefaultPetID es la mascota por defecto del historial.
const DefaultPetID = "melba"

const DefaultCreatedBy = "system"
