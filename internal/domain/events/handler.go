package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-medical-log/internal/middleware"
	"pet-medical-log/internal/ports/docstore"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}", func(pr chi.Router) {
		pr.Route("/events", func(er chi.Router) {
			er.Post("/", createEventHandler(svc))
			er.Get("/", listEventsHandler(svc))

			er.Get("/{eventID}", getEventHandler(svc))
			er.Patch("/{eventID}", patchEventHandler(svc))
			er.Delete("/{eventID}", deleteEventHandler(svc))
		})

		pr.Get("/weight/latest", latestWeightHandler(svc))
		pr.Get("/medications/active", activeMedicationsHandler(svc))
	})
}

// createEventRequest es el cuerpo para registrar un evento. data depende de type.
type createEventRequest struct {
	Type        EventType       `json:"type" enums:"WEIGHT,MEDICATION,DOSE,VISIT,LAB,IMAGING,FOOD,GROOMING,PURCHASE,NOTE"`
	OccurredAt  string          `json:"occurredAt"` // RFC3339, opcional (default: ahora)
	Source      Source          `json:"source" enums:"manual,vet,whatsapp"`
	Tags        []string        `json:"tags"`
	Notes       string          `json:"notes"`
	Attachments []Attachment    `json:"attachments"`
	Data        json.RawMessage `json:"data" swaggertype:"object"`
}

// patchEventRequest: solo se aplican los campos presentes. Si viene data, type es opcional
// (se usa el del evento guardado).
type patchEventRequest struct {
	OccurredAt  *string         `json:"occurredAt"`
	Source      *Source         `json:"source"`
	Notes       *string         `json:"notes"`
	Tags        []string        `json:"tags"`
	Attachments []Attachment    `json:"attachments"`
	Type        EventType       `json:"type"`
	Data        json.RawMessage `json:"data" swaggertype:"object"`
}

// eventResponse representa un evento del historial devuelto por la API.
type eventResponse struct {
	ID          string       `json:"id"`
	Type        EventType    `json:"type"`
	OccurredAt  time.Time    `json:"occurredAt"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   string       `json:"createdBy"`
	Source      Source       `json:"source"`
	Tags        []string     `json:"tags"`
	Notes       string       `json:"notes"`
	Attachments []Attachment `json:"attachments"`
	Data        any          `json:"data" swaggertype:"object"`
	LegacyID    string       `json:"legacyId,omitempty"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Registra un evento tipado en el historial de la mascota. Si el request trae claims (`X-Debug-User-ID` en dev o `Authorization: Bearer <token>`), createdBy es el usuario; si no, "system".
// @Tags events
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createEventRequest true "Evento; occurredAt en RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / type inválido / data inválida"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		data, err := decodeRequestPayload(req.Type, req.Data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var occurredAt time.Time
		if strings.TrimSpace(req.OccurredAt) != "" {
			occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
			if err != nil {
				http.Error(w, "occurredAt must be RFC3339", http.StatusBadRequest)
				return
			}
		}
		if req.Source != "" && !req.Source.Valid() {
			http.Error(w, "invalid source", http.StatusBadRequest)
			return
		}

		e := Event{
			Type:        req.Type,
			OccurredAt:  occurredAt,
			Source:      req.Source,
			Tags:        req.Tags,
			Notes:       req.Notes,
			Attachments: req.Attachments,
			Data:        data,
		}
		e.CreatedBy = middleware.UserID(r.Context()) // "" => "system"

		id, err := svc.AddEvent(r.Context(), petID, e)
		if err != nil {
			writeError(w, err)
			return
		}

		created, found, err := svc.GetEvent(r.Context(), petID, id)
		if err != nil || !found {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(created))
	}
}

// listEventsHandler godoc
// @Summary Listar eventos de una mascota
// @Description Lista los eventos del historial. Filtra por tipos, rango de occurredAt y texto libre (notas, nombre del medicamento, tags).
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de eventos (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: WEIGHT,MEDICATION)"
// @Param from query string false "occurredAt mínimo (RFC3339)"
// @Param to query string false "occurredAt máximo (RFC3339)"
// @Param order query string false "asc o desc (default desc)"
// @Param q query string false "Texto de búsqueda"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		opts, err := parseListOptions(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var items []Event
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			items, err = svc.SearchEvents(r.Context(), petID, q, opts)
		} else {
			items, err = svc.ListEvents(r.Context(), petID, opts)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

// getEventHandler godoc
// @Summary Obtener evento
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "event not found"
// @Router /pets/{petID}/events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		eventID := chi.URLParam(r, "eventID")

		e, found, err := svc.GetEvent(r.Context(), petID, eventID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// patchEventHandler godoc
// @Summary Modificar evento
// @Description Merge parcial: solo cambian los campos enviados. Enviar data reemplaza el payload completo.
// @Tags events
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param eventID path string true "ID del evento"
// @Param payload body patchEventRequest true "Campos a modificar"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "invalid json / data inválida"
// @Failure 404 {string} string "event not found"
// @Router /pets/{petID}/events/{eventID} [patch]
func patchEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		eventID := chi.URLParam(r, "eventID")

		var req patchEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		current, found, err := svc.GetEvent(r.Context(), petID, eventID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		patch := EventPatch{
			Source:      req.Source,
			Notes:       req.Notes,
			Tags:        req.Tags,
			Attachments: req.Attachments,
		}
		if req.Source != nil && !req.Source.Valid() {
			http.Error(w, "invalid source", http.StatusBadRequest)
			return
		}
		if req.OccurredAt != nil {
			t, err := time.Parse(time.RFC3339, *req.OccurredAt)
			if err != nil {
				http.Error(w, "occurredAt must be RFC3339", http.StatusBadRequest)
				return
			}
			patch.OccurredAt = &t
		}
		if len(req.Data) > 0 {
			typ := req.Type
			if typ == "" {
				typ = current.Type
			}
			data, err := decodeRequestPayload(typ, req.Data)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			patch.Data = data
		}

		if err := svc.UpdateEvent(r.Context(), petID, eventID, patch); err != nil {
			writeError(w, err)
			return
		}

		updated, found, err := svc.GetEvent(r.Context(), petID, eventID)
		if err != nil || !found {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(updated))
	}
}

// deleteEventHandler godoc
// @Summary Borrar evento
// @Description Borra el evento. Borrar un id inexistente no es error.
// @Tags events
// @Param petID path string true "ID de la mascota"
// @Param eventID path string true "ID del evento"
// @Success 204
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/events/{eventID} [delete]
func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		eventID := chi.URLParam(r, "eventID")

		if err := svc.DeleteEvent(r.Context(), petID, eventID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// latestWeightHandler godoc
// @Summary Último peso
// @Tags weight
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "no weight recorded"
// @Router /pets/{petID}/weight/latest [get]
func latestWeightHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		e, found, err := svc.GetLatestWeight(r.Context(), petID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			http.Error(w, "no weight recorded", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// activeMedicationsHandler godoc
// @Summary Medicaciones activas
// @Description Medicaciones sin fecha de fin o con fin posterior a `at` (default: ahora).
// @Tags medications
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param at query string false "Instante de referencia (RFC3339)"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "at must be RFC3339"
// @Router /pets/{petID}/medications/active [get]
func activeMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var at *time.Time
		if v := strings.TrimSpace(r.URL.Query().Get("at")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = &t
		}

		items, err := svc.GetActiveMedications(r.Context(), petID, at)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

func decodeRequestPayload(t EventType, raw json.RawMessage) (Payload, error) {
	p, ok := newPayload(t)
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("data is required")
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, errors.New("invalid data for " + string(t))
	}
	return deref(p), nil
}

func parseListOptions(r *http.Request) (ListOptions, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	opts := ListOptions{Limit: limit}

	// types=WEIGHT,MEDICATION
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.ToUpper(strings.TrimSpace(p)))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return ListOptions{}, fmt.Errorf("unknown event type %q", t)
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			opts.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListOptions{}, errors.New("from must be RFC3339")
		}
		opts.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListOptions{}, errors.New("to must be RFC3339")
		}
		opts.To = &t
	}

	switch v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("order"))); v {
	case "":
	case "asc":
		opts.OrderDirection = docstore.Asc
	case "desc":
		opts.OrderDirection = docstore.Desc
	default:
		return ListOptions{}, errors.New("order must be asc or desc")
	}

	return opts, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, docstore.ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrNotInitialized):
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEventResponse(e Event) eventResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	atts := e.Attachments
	if atts == nil {
		atts = []Attachment{}
	}
	return eventResponse{
		ID:          e.ID,
		Type:        e.Type,
		OccurredAt:  e.OccurredAt,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		Source:      e.Source,
		Tags:        tags,
		Notes:       e.Notes,
		Attachments: atts,
		Data:        e.Data,
		LegacyID:    e.LegacyID,
	}
}

func toEventResponses(items []Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
