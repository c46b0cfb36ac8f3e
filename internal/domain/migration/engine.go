// Package migration convierte los registros planos del modelo viejo en eventos tipados.
// Es idempotente: cada evento lleva un legacyId determinístico y se saltea lo ya migrado.
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-medical-log/internal/domain/events"
	"pet-medical-log/internal/domain/legacy"
	"pet-medical-log/internal/domain/normalize"
	"pet-medical-log/internal/platform/logger"
)

// EventStore es lo que el motor necesita del adaptador de eventos.
type EventStore interface {
	FindByLegacyID(ctx context.Context, petID, legacyID string) (events.Event, bool, error)
	AddEvent(ctx context.Context, petID string, e events.Event) (string, error)
	AddEventsBatch(ctx context.Context, petID string, evs []events.Event) ([]string, error)
}

// RecordSource es la lectura del modelo viejo.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]legacy.Record, error)
	CurrentSnapshot(ctx context.Context) (legacy.Snapshot, bool, error)
}

type PhaseSummary struct {
	Created int
	Skipped int
}

type Summary struct {
	Records     PhaseSummary
	Medications PhaseSummary
}

type Options struct {
	PetID    string         // default events.DefaultPetID
	Location *time.Location // zona de las fechas dd/mm/yy; default UTC
	Logger   logger.Logger
}

type Engine struct {
	events  EventStore
	records RecordSource
	log     logger.Logger
	now     func() time.Time
	loc     *time.Location
	petID   string
}

func NewEngine(store EventStore, source RecordSource, opts Options) *Engine {
	e := &Engine{
		events:  store,
		records: source,
		log:     opts.Logger,
		now:     time.Now,
		loc:     opts.Location,
		petID:   opts.PetID,
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.petID == "" {
		e.petID = events.DefaultPetID
	}
	e.log = e.log.With(map[string]any{"pet_id": e.petID})
	return e
}

// Run ejecuta las dos fases en orden. Un error de escritura corta la corrida;
// lo ya escrito queda y una nueva corrida retoma desde ahí.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	rec, err := e.MigrateRecords(ctx)
	sum.Records = rec
	if err != nil {
		return sum, err
	}

	meds, err := e.MigrateMedications(ctx)
	sum.Medications = meds
	if err != nil {
		return sum, err
	}
	return sum, nil
}

// MigrateRecords: fase 1. Created cuenta eventos, Skipped cuenta registros.
func (e *Engine) MigrateRecords(ctx context.Context) (PhaseSummary, error) {
	var sum PhaseSummary

	records, err := e.records.ListRecords(ctx)
	if err != nil {
		e.log.Error("migración de registros: no se pudieron leer", map[string]any{"err": err})
		return sum, fmt.Errorf("read legacy records: %w", err)
	}
	e.log.Info("migración de registros iniciada", map[string]any{"records": len(records)})

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if e.alreadyMigrated(ctx, rec.ID) {
			e.log.Info("registro ya migrado, se saltea", map[string]any{"legacy_id": rec.ID})
			sum.Skipped++
			continue
		}

		occurredAt, ok := legacy.ParseDate(rec.Date, e.loc)
		if !ok {
			occurredAt = e.now()
		}

		evs := eventsForRecord(rec, occurredAt)
		if len(evs) == 0 {
			e.log.Warn("registro sin datos migrables", map[string]any{"legacy_id": rec.ID})
			sum.Skipped++
			continue
		}

		if _, err := e.events.AddEventsBatch(ctx, e.petID, evs); err != nil {
			e.log.Error("no se pudo guardar el registro migrado", map[string]any{"legacy_id": rec.ID, "err": err})
			return sum, fmt.Errorf("migrate record %s: %w", rec.ID, err)
		}
		e.log.Info("registro migrado", map[string]any{"legacy_id": rec.ID, "events": len(evs)})
		sum.Created += len(evs)
	}

	e.log.Info("migración de registros completada", map[string]any{"created": sum.Created, "skipped": sum.Skipped})
	return sum, nil
}

// alreadyMigrated: si la búsqueda falla se loguea y se toma como no migrado
// (se prefiere duplicar antes que perder datos).
func (e *Engine) alreadyMigrated(ctx context.Context, legacyID string) bool {
	_, found, err := e.events.FindByLegacyID(ctx, e.petID, legacyID)
	if err != nil {
		e.log.Warn("falló la búsqueda por legacyId, se asume no migrado", map[string]any{"legacy_id": legacyID, "err": err})
		return false
	}
	return found
}

// eventsForRecord arma los eventos de un registro en orden fijo: peso, consulta, vacuna, fallback.
func eventsForRecord(rec legacy.Record, occurredAt time.Time) []events.Event {
	out := make([]events.Event, 0, 2)
	meta := func(notes string, tags []string) events.Meta {
		return events.Meta{
			Source:   events.SourceManual,
			Tags:     tags,
			Notes:    notes,
			LegacyID: rec.ID,
		}
	}

	if rec.Peso != nil {
		if kg, ok := normalize.Weight(rec.Peso); ok {
			out = append(out, events.NewWeightEvent(kg, occurredAt, events.WeightOptions{
				Meta: meta(fmt.Sprintf("Migrado desde registro %s", rec.ID), rec.Keywords),
			}))
		}
	}

	if rec.Consulta != "" {
		if rec.Medico != "" {
			out = append(out, events.NewVisitEvent(occurredAt, events.VisitOptions{
				Meta:         meta(rec.Consulta, rec.Keywords),
				Veterinarian: rec.Medico,
			}))
		} else {
			out = append(out, events.NewNoteEvent(occurredAt, events.NoteOptions{
				Meta: meta("", rec.Keywords),
				Text: rec.Consulta,
			}))
		}
	}

	if rec.Vacuna != "" {
		if rec.Medico == "" && rec.Consulta == "" {
			tags := append(append([]string{}, rec.Keywords...), "vacuna")
			out = append(out, events.NewVisitEvent(occurredAt, events.VisitOptions{
				Meta: meta("Vacuna: "+rec.Vacuna, tags),
			}))
		} else if len(out) > 0 {
			// con médico pero sin consulta y sin peso no hay evento donde anotarla
			last := &out[len(out)-1]
			last.Tags = append(last.Tags, "vacuna")
			last.Notes += " | Vacuna: " + rec.Vacuna
		}
	}

	if len(out) == 0 && len(rec.Keywords) > 0 {
		date := rec.Date
		if strings.TrimSpace(date) == "" {
			date = legacy.FormatDate(occurredAt)
		}
		out = append(out, events.NewNoteEvent(occurredAt, events.NoteOptions{
			Meta: meta("", rec.Keywords),
			Text: "Registro del " + date,
		}))
	}
	return out
}

// MigrateMedications: fase 2, un MEDICATION por cada entrada de current-data/last.
func (e *Engine) MigrateMedications(ctx context.Context) (PhaseSummary, error) {
	var sum PhaseSummary

	snap, found, err := e.records.CurrentSnapshot(ctx)
	if err != nil {
		e.log.Error("migración de medicamentos: no se pudo leer current-data", map[string]any{"err": err})
		return sum, fmt.Errorf("read current snapshot: %w", err)
	}
	if !found || len(snap.Medications) == 0 {
		e.log.Info("no hay medicamentos en current-data para migrar", nil)
		return sum, nil
	}
	e.log.Info("migración de medicamentos iniciada", map[string]any{"medications": len(snap.Medications)})

	for _, med := range snap.Medications {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		key := MedicationLegacyID(med)
		if e.alreadyMigrated(ctx, key) {
			e.log.Info("medicamento ya migrado, se saltea", map[string]any{"legacy_id": key})
			sum.Skipped++
			continue
		}

		ev := e.medicationEvent(med, snap, key)
		if _, err := e.events.AddEvent(ctx, e.petID, ev); err != nil {
			e.log.Error("no se pudo guardar el medicamento migrado", map[string]any{"legacy_id": key, "err": err})
			return sum, fmt.Errorf("migrate medication %s: %w", med.Nombre, err)
		}
		e.log.Info("medicamento migrado", map[string]any{"legacy_id": key})
		sum.Created++
	}

	e.log.Info("migración de medicamentos completada", map[string]any{"created": sum.Created, "skipped": sum.Skipped})
	return sum, nil
}

// MedicationLegacyID es la clave de idempotencia: "medication-<nombre>-<fechaInicio|unknown>".
func MedicationLegacyID(med legacy.Medication) string {
	start := med.FechaInicio
	if start == "" {
		start = "unknown"
	}
	return fmt.Sprintf("medication-%s-%s", med.Nombre, start)
}

func (e *Engine) medicationEvent(med legacy.Medication, snap legacy.Snapshot, key string) events.Event {
	startAt, ok := legacy.ParseDate(med.FechaInicio, e.loc)
	if !ok {
		startAt, ok = legacy.ParseDate(snap.Date, e.loc)
	}
	if !ok {
		startAt = e.now()
	}

	var endAt *time.Time
	if end, ok := legacy.ParseDate(med.FechaFin, e.loc); ok {
		endAt = &end
	}

	doseText := med.Dosis
	if doseText == "" {
		doseText = med.Instrucciones
	}
	parsed := normalize.MedicationDose(doseText)
	freq, hasFreq := normalize.MedicationFrequency(med.Instrucciones)

	var dose *events.MedicationDose
	if !parsed.IsZero() || hasFreq {
		dose = &events.MedicationDose{
			AmountMg: parsed.AmountMg,
			Amount:   parsed.Amount,
			Unit:     parsed.Unit,
			Form:     parsed.Form,
			Fraction: parsed.Fraction,
		}
		if hasFreq {
			dose.FrequencyHours = &freq
		}
	}

	return events.NewMedicationEvent(normalize.MedicationName(med.Nombre), startAt, endAt, events.MedicationOptions{
		Meta: events.Meta{
			Source:   events.SourceManual,
			Tags:     []string{"medicación"},
			Notes:    "Migrado desde current-data",
			LegacyID: key,
		},
		Dose:         dose,
		Instructions: med.Instrucciones,
	})
}
