package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-medical-log/internal/platform/metrics"
	"pet-medical-log/internal/router"
)

type eventJSON struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt string         `json:"occurredAt"`
	CreatedBy  string         `json:"createdBy"`
	Notes      string         `json:"notes"`
	Tags       []string       `json:"tags"`
	Data       map[string]any `json:"data"`
}

func TestHTTP_EndToEnd_Timeline(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	vetID := "vet-1"

	// 1) Health
	{
		st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
		}
	}

	// 2) Dos pesos
	createEvent(t, ts.URL, vetID, "melba", map[string]any{
		"type":       "WEIGHT",
		"occurredAt": "2024-03-01T10:00:00Z",
		"data":       map[string]any{"weightKg": 18.4},
	})
	latestID := createEvent(t, ts.URL, vetID, "melba", map[string]any{
		"type":       "WEIGHT",
		"occurredAt": "2024-04-01T10:00:00Z",
		"tags":       []string{"control"},
		"data":       map[string]any{"weightKg": 19.1, "method": "balanza"},
	})

	// 3) Último peso
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/melba/weight/latest", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 latest weight, got %d body=%s", st, string(body))
		}
		e := decodeEvent(t, body)
		if e.ID != latestID {
			t.Fatalf("expected latest weight %s, got %s", latestID, e.ID)
		}
		if e.CreatedBy != vetID {
			t.Fatalf("expected createdBy %s, got %s", vetID, e.CreatedBy)
		}
		if e.Data["weightKg"] != 19.1 {
			t.Fatalf("expected weightKg 19.1, got %v", e.Data["weightKg"])
		}
	}

	// 4) Medicación en curso y otra terminada
	ongoingID := createEvent(t, ts.URL, vetID, "melba", map[string]any{
		"type": "MEDICATION",
		"data": map[string]any{
			"name":    "Omeprazol",
			"startAt": "2024-03-01T00:00:00Z",
			"endAt":   nil,
			"dose":    map[string]any{"amountMg": 20, "frequencyHours": 24},
		},
	})
	createEvent(t, ts.URL, vetID, "melba", map[string]any{
		"type": "MEDICATION",
		"data": map[string]any{
			"name":    "Amoxicilina",
			"startAt": "2024-01-01T00:00:00Z",
			"endAt":   "2024-01-10T00:00:00Z",
		},
	})
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/melba/medications/active", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 active medications, got %d body=%s", st, string(body))
		}
		items := decodeEvents(t, body)
		if len(items) != 1 || items[0].ID != ongoingID {
			t.Fatalf("expected only ongoing medication, got %s", string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/melba/medications/active?at=2024-01-05T00:00:00Z", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 active medications at date, got %d body=%s", st, string(body))
		}
		// sin endAt cuenta como activa en cualquier fecha
		if items := decodeEvents(t, body); len(items) != 2 {
			t.Fatalf("expected both medications active on 2024-01-05, got %s", string(body))
		}
	}

	// 5) Listado filtrado por tipo, ascendente
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/melba/events?types=weight&order=asc", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		items := decodeEvents(t, body)
		if len(items) != 2 {
			t.Fatalf("expected 2 weights, got %d", len(items))
		}
		if items[1].ID != latestID {
			t.Fatalf("expected ascending order by occurredAt, got %s", string(body))
		}
	}

	// 6) Búsqueda por texto (nombre del medicamento)
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/melba/events?q=omepra", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
		}
		if items := decodeEvents(t, body); len(items) != 1 || items[0].ID != ongoingID {
			t.Fatalf("expected omeprazol only, got %s", string(body))
		}
	}

	// 7) PATCH de notas
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/melba/events/"+latestID, vetID, map[string]any{
			"notes": "post operatorio",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		e := decodeEvent(t, body)
		if e.Notes != "post operatorio" || e.Data["weightKg"] != 19.1 {
			t.Fatalf("expected merged patch, got %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/melba/events/missing", vetID, map[string]any{"notes": "x"})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 patch missing, got %d", st)
		}
	}

	// 8) DELETE idempotente
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/melba/events/"+latestID, vetID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets/melba/events/"+latestID, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/pets/melba/events/"+latestID, vetID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 deleting twice, got %d", st)
		}
	}

	// 9) Otra mascota no ve los eventos de melba
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/luna/events", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list other pet, got %d", st)
		}
		if items := decodeEvents(t, body); len(items) != 0 {
			t.Fatalf("expected empty timeline for luna, got %s", string(body))
		}
	}
}

func TestHTTP_CreateEvent_RejectsBadInput(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	cases := []struct {
		name    string
		payload any
	}{
		{"unknown type", map[string]any{"type": "BATH", "data": map[string]any{}}},
		{"missing data", map[string]any{"type": "WEIGHT"}},
		{"bad occurredAt", map[string]any{"type": "NOTE", "occurredAt": "ayer", "data": map[string]any{"text": "x"}}},
		{"bad source", map[string]any{"type": "NOTE", "source": "fax", "data": map[string]any{"text": "x"}}},
		{"not json", "{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, "POST", "/pets/melba/events", "", tc.payload)
			if st != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", st, string(body))
			}
		})
	}

	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/melba/events?order=sideways", "", nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad order, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/melba/weight/latest", "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 with no weights, got %d", st)
		}
	}
}

func TestHTTP_DefaultCreatedByIsSystem(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	id := createEvent(t, ts.URL, "", "melba", map[string]any{
		"type": "NOTE",
		"data": map[string]any{"text": "estornudos", "symptoms": []string{"estornudos"}},
	})
	st, body := doReq(t, ts.URL, "GET", "/pets/melba/events/"+id, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get, got %d", st)
	}
	e := decodeEvent(t, body)
	if e.CreatedBy != "system" {
		t.Fatalf("expected createdBy system, got %q", e.CreatedBy)
	}
	if e.OccurredAt == "" {
		t.Fatalf("expected occurredAt defaulted, got empty")
	}
}

func TestHTTP_MetricsAndSwagger(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{Metrics: metrics.New()}))
	defer ts.Close()

	createEvent(t, ts.URL, "", "melba", map[string]any{
		"type": "WEIGHT",
		"data": map[string]any{"weightKg": 18},
	})

	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !strings.Contains(string(body), `petlog_store_operations_total{op="create",result="ok"} 1`) {
		t.Fatalf("expected create counter in metrics, got %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 swagger doc, got %d", st)
	}
	if !strings.Contains(string(body), "/pets/{petID}/events") {
		t.Fatalf("expected events path in swagger doc")
	}
}

func TestHTTP_NoMetricsWithoutCollector(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 metrics when disabled, got %d", st)
	}
}

func createEvent(t *testing.T, baseURL, userID, petID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets/"+petID+"/events", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create event: missing id body=%s", string(body))
	}
	return resp.ID
}

func decodeEvent(t *testing.T, body []byte) eventJSON {
	t.Helper()
	var e eventJSON
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode event: %v body=%s", err, string(body))
	}
	return e
}

func decodeEvents(t *testing.T, body []byte) []eventJSON {
	t.Helper()
	var items []eventJSON
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode events: %v body=%s", err, string(body))
	}
	return items
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
