package events

import "time"

type Attachment struct {
	Type    AttachmentType `json:"type"`
	URL     string         `json:"url"`
	Caption string         `json:"caption,omitempty"`
}

// Event es un hecho del historial médico con payload tipado según Type.
type Event struct {
	ID   string
	Type EventType

	OccurredAt time.Time // cuándo pasó
	CreatedAt  time.Time // cuándo se registró

	CreatedBy   string
	Source      Source
	Tags        []string
	Notes       string
	Attachments []Attachment

	Data Payload

	// LegacyID es el id del registro viejo del que salió el evento (solo migración).
	LegacyID string
}

// EventPatch: los campos nil no se tocan. Data reemplaza el payload y también el type.
type EventPatch struct {
	OccurredAt  *time.Time
	CreatedBy   *string
	Source      *Source
	Notes       *string
	Tags        []string
	Attachments []Attachment
	Data        Payload
}

func (p EventPatch) IsEmpty() bool {
	return p.OccurredAt == nil && p.CreatedBy == nil && p.Source == nil && p.Notes == nil &&
		p.Tags == nil && p.Attachments == nil && p.Data == nil
}
