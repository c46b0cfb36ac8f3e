// Package legacy lee el modelo viejo de registros planos (melba-records y current-data/last).
// Es solo lectura: nada en este repo escribe esas colecciones.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-medical-log/internal/platform/logger"
	"pet-medical-log/internal/ports/docstore"
)

const (
	RecordsCollection  = "melba-records"
	SnapshotCollection = "current-data"
	SnapshotDocID      = "last"
)

// Record es una visita/entrada del modelo viejo. Peso puede venir como string ("19.6 kg") o número.
type Record struct {
	ID       string
	Date     string // dd/mm/yy
	Consulta string
	Medico   string
	Vacuna   string
	Peso     any
	Keywords []string
}

type Medication struct {
	Nombre        string
	FechaInicio   string
	FechaFin      string
	Dosis         string
	Instrucciones string
}

// Snapshot es el documento current-data/last.
type Snapshot struct {
	Peso        any
	Date        string
	LastUpdate  time.Time
	Medications []Medication
}

type Reader struct {
	store docstore.Store
	log   logger.Logger
}

func NewReader(store docstore.Store, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{store: store, log: log}
}

var ErrNotInitialized = errors.New("legacy reader not initialized")

// ListRecords devuelve los registros ordenados por date (string) descendente.
func (r *Reader) ListRecords(ctx context.Context) ([]Record, error) {
	if r == nil || r.store == nil {
		return nil, ErrNotInitialized
	}
	snaps, err := r.store.Query(ctx, RecordsCollection, docstore.Query{
		OrderBy: []docstore.Order{{Field: "date", Direction: docstore.Desc}},
	})
	if err != nil {
		r.log.Error("list legacy records failed", map[string]any{"err": err})
		return nil, fmt.Errorf("list legacy records: %w", err)
	}

	out := make([]Record, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, recordFromDoc(s.ID, s.Data))
	}
	return out, nil
}

// CurrentSnapshot devuelve found=false si current-data/last no existe.
func (r *Reader) CurrentSnapshot(ctx context.Context) (Snapshot, bool, error) {
	if r == nil || r.store == nil {
		return Snapshot{}, false, ErrNotInitialized
	}
	doc, err := r.store.Get(ctx, SnapshotCollection, SnapshotDocID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		r.log.Error("get current snapshot failed", map[string]any{"err": err})
		return Snapshot{}, false, fmt.Errorf("get current snapshot: %w", err)
	}
	return snapshotFromDoc(doc), true, nil
}

func recordFromDoc(id string, doc docstore.Document) Record {
	return Record{
		ID:       id,
		Date:     str(doc["date"]),
		Consulta: str(doc["consulta"]),
		Medico:   str(doc["medico"]),
		Vacuna:   str(doc["vacuna"]),
		Peso:     doc["peso"],
		Keywords: strs(doc["keywords"]),
	}
}

func snapshotFromDoc(doc docstore.Document) Snapshot {
	s := Snapshot{
		Peso: doc["peso"],
		Date: str(doc["date"]),
	}
	switch v := doc["lastUpdate"].(type) {
	case time.Time:
		s.LastUpdate = v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			s.LastUpdate = t
		}
	}
	if list, ok := doc["medicamentos"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s.Medications = append(s.Medications, Medication{
				Nombre:        str(m["nombre"]),
				FechaInicio:   str(m["fechaInicio"]),
				FechaFin:      str(m["fechaFin"]),
				Dosis:         str(m["dosis"]),
				Instrucciones: str(m["instrucciones"]),
			})
		}
	}
	return s
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strs(v any) []string {
	out := []string{}
	switch list := v.(type) {
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
