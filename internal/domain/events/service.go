package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-medical-log/internal/platform/logger"
	"pet-medical-log/internal/ports/docstore"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotInitialized = errors.New("event store not initialized")
)

// Service es el adaptador entre eventos tipados y el store de documentos.
type Service struct {
	store docstore.Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store docstore.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return ErrNotInitialized
	}
	return nil
}

// withDefaults completa lo que el llamador no mandó: createdAt=now, occurredAt=createdAt.
func (s *Service) withDefaults(e Event) Event {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = e.CreatedAt
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		e.CreatedBy = DefaultCreatedBy
	}
	if e.Source == "" {
		e.Source = SourceManual
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Attachments == nil {
		e.Attachments = []Attachment{}
	}
	if e.Type == "" && e.Data != nil {
		e.Type = e.Data.EventType()
	}
	return e
}

func (s *Service) AddEvent(ctx context.Context, petID string, e Event) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	doc, err := encodeEvent(s.withDefaults(e))
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, EventsCollection(petID), doc)
	if err != nil {
		s.log.Error("add event failed", map[string]any{"pet_id": petID, "type": string(e.Type), "err": err})
		return "", fmt.Errorf("add event: %w", err)
	}
	return id, nil
}

// AddEventsBatch escribe todos los eventos en una sola operación atómica.
func (s *Service) AddEventsBatch(ctx context.Context, petID string, evs []Event) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		return []string{}, nil
	}

	docs := make([]docstore.Document, 0, len(evs))
	for i, e := range evs {
		doc, err := encodeEvent(s.withDefaults(e))
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		docs = append(docs, doc)
	}

	ids, err := s.store.CreateBatch(ctx, EventsCollection(petID), docs)
	if err != nil {
		s.log.Error("add events batch failed", map[string]any{"pet_id": petID, "count": len(evs), "err": err})
		return nil, fmt.Errorf("add events batch: %w", err)
	}
	return ids, nil
}

func (s *Service) UpdateEvent(ctx context.Context, petID, id string, patch EventPatch) error {
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	doc, err := encodePatch(patch)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, EventsCollection(petID), id, doc); err != nil {
		s.log.Error("update event failed", map[string]any{"pet_id": petID, "event_id": id, "err": err})
		return fmt.Errorf("update event %s: %w", id, err)
	}
	return nil
}

// DeleteEvent no verifica existencia: devuelve lo que diga el store.
func (s *Service) DeleteEvent(ctx context.Context, petID, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.store.Delete(ctx, EventsCollection(petID), id); err != nil {
		s.log.Error("delete event failed", map[string]any{"pet_id": petID, "event_id": id, "err": err})
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// GetEvent devuelve found=false (sin error) si el evento no existe.
func (s *Service) GetEvent(ctx context.Context, petID, id string) (Event, bool, error) {
	if err := s.ready(); err != nil {
		return Event{}, false, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, false, ErrInvalidInput
	}

	doc, err := s.store.Get(ctx, EventsCollection(petID), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Event{}, false, nil
		}
		s.log.Error("get event failed", map[string]any{"pet_id": petID, "event_id": id, "err": err})
		return Event{}, false, fmt.Errorf("get event %s: %w", id, err)
	}

	e, err := decodeEvent(id, doc)
	if err != nil {
		return Event{}, false, err
	}
	return e, true, nil
}

func (s *Service) ListEvents(ctx context.Context, petID string, opts ListOptions) ([]Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	q, err := opts.query()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.query(ctx, petID, q)
}

func (s *Service) query(ctx context.Context, petID string, q docstore.Query) ([]Event, error) {
	snaps, err := s.store.Query(ctx, EventsCollection(petID), q)
	if err != nil {
		s.log.Error("query events failed", map[string]any{"pet_id": petID, "err": err})
		return nil, fmt.Errorf("query events: %w", err)
	}

	out := make([]Event, 0, len(snaps))
	for _, snap := range snaps {
		e, err := decodeEvent(snap.ID, snap.Data)
		if err != nil {
			s.log.Warn("skipping malformed event", map[string]any{"pet_id": petID, "event_id": snap.ID, "err": err})
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) GetLatestWeight(ctx context.Context, petID string) (Event, bool, error) {
	items, err := s.ListEvents(ctx, petID, ListOptions{
		Types: []EventType{EventTypeWeight},
		Limit: 1,
	})
	if err != nil {
		return Event{}, false, err
	}
	if len(items) == 0 {
		return Event{}, false, nil
	}
	return items[0], true, nil
}

// GetActiveMedications devuelve los MEDICATION sin endAt o con endAt >= at (default: ahora).
func (s *Service) GetActiveMedications(ctx context.Context, petID string, at *time.Time) ([]Event, error) {
	items, err := s.ListEvents(ctx, petID, ListOptions{Types: []EventType{EventTypeMedication}})
	if err != nil {
		return nil, err
	}

	ref := s.now()
	if at != nil {
		ref = *at
	}

	out := make([]Event, 0, len(items))
	for _, e := range items {
		md, ok := e.Data.(MedicationData)
		if !ok || md.Active(ref) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindByLegacyID busca el evento migrado desde un registro viejo (consulta por igualdad indexada).
func (s *Service) FindByLegacyID(ctx context.Context, petID, legacyID string) (Event, bool, error) {
	if err := s.ready(); err != nil {
		return Event{}, false, err
	}
	if strings.TrimSpace(legacyID) == "" {
		return Event{}, false, ErrInvalidInput
	}

	items, err := s.query(ctx, petID, docstore.Query{
		Where: []docstore.Filter{{Field: "legacyId", Op: docstore.OpEqual, Value: legacyID}},
		Limit: 1,
	})
	if err != nil {
		return Event{}, false, err
	}
	if len(items) == 0 {
		return Event{}, false, nil
	}
	return items[0], true, nil
}

// SearchEvents filtra por texto (notas, nombre del medicamento y tags) sobre ListEvents.
func (s *Service) SearchEvents(ctx context.Context, petID, text string, opts ListOptions) ([]Event, error) {
	items, err := s.ListEvents(ctx, petID, opts)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return items, nil
	}

	out := make([]Event, 0, len(items))
	for _, e := range items {
		if matchesText(e, needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchesText(e Event, needle string) bool {
	if strings.Contains(strings.ToLower(e.Notes), needle) {
		return true
	}
	if md, ok := e.Data.(MedicationData); ok && strings.Contains(strings.ToLower(md.Name), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
