package orb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/modelrelay/orb-go/testutil"
)

func migrationJSON(effective string) string {
	return `{"id":"mig_1","current_plan_id":"plan_1","plan_id":"plan_2","effective_time":` + effective + `,"status":"in_progress"}`
}

func TestMigrationEffectiveTimeForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind EffectiveTimeKind
		at   time.Time
	}{
		{name: "end of term", raw: `"end_of_term"`, kind: EffectiveTimeEndOfTerm},
		{name: "date time", raw: `"2024-06-01T12:30:00Z"`, kind: EffectiveTimeDateTime, at: time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{name: "date", raw: `"2024-06-01"`, kind: EffectiveTimeDate, at: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Migration
			if err := json.Unmarshal([]byte(migrationJSON(tt.raw)), &m); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if m.EffectiveTime == nil || m.EffectiveTime.Kind != tt.kind {
				t.Fatalf("unexpected effective time %+v", m.EffectiveTime)
			}
			if !m.EffectiveTime.EffectiveAt().Equal(tt.at) {
				t.Fatalf("effective at %v, want %v", m.EffectiveTime.EffectiveAt(), tt.at)
			}
			if err := m.Validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			encoded, err := json.Marshal(m.EffectiveTime)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(encoded) != tt.raw {
				t.Fatalf("re-encoded %s, want %s", encoded, tt.raw)
			}
		})
	}
}

func TestMigrationEffectiveTimeNullAndUnknown(t *testing.T) {
	var m Migration
	if err := json.Unmarshal([]byte(migrationJSON("null")), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.EffectiveTime != nil || !m.JSON.Field("effective_time").IsNull() {
		t.Fatalf("expected null effective time, got %+v", m.EffectiveTime)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("null effective time is allowed: %v", err)
	}

	m = Migration{}
	if err := json.Unmarshal([]byte(migrationJSON(`"next_quarter"`)), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.EffectiveTime == nil || m.EffectiveTime.Kind != EffectiveTimeUnknown || string(m.EffectiveTime.Raw) != `"next_quarter"` {
		t.Fatalf("unexpected effective time %+v", m.EffectiveTime)
	}
	var verr *ValidationError
	if err := m.Validate(); !errors.As(err, &verr) || verr.Kind != ValidationUnmatchedUnion || verr.Path != "effective_time" {
		t.Fatalf("expected unmatched union at effective_time, got %v", err)
	}
}

func TestMigrationsFetchAndCancel(t *testing.T) {
	canceled := `{"id":"mig_1","current_plan_id":"plan_1","plan_id":"plan_2","effective_time":"end_of_term","status":"canceled"}`
	srv := testutil.NewServer().
		On(http.MethodGet, "/plans/plan_1/migrations", testutil.JSON(200, listJSON(false, "", migrationJSON(`"2024-06-01"`)))).
		On(http.MethodGet, "/plans/plan_1/migrations/mig_1", testutil.JSON(200, migrationJSON(`"end_of_term"`))).
		On(http.MethodPost, "/plans/plan_1/migrations/mig_1/cancel", testutil.JSON(200, canceled))
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	page, err := client.Migrations.List(ctx, "plan_1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].EffectiveTime.Kind != EffectiveTimeDate {
		t.Fatalf("unexpected page %+v", page.Data)
	}

	m, err := client.Migrations.Fetch(ctx, "plan_1", "mig_1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if m.Status.IsTerminal() {
		t.Fatalf("in_progress is not terminal")
	}

	m, err = client.Migrations.Cancel(ctx, "plan_1", "mig_1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if m.Status != MigrationStatusCanceled || !m.Status.IsTerminal() {
		t.Fatalf("unexpected status %s", m.Status)
	}
	last := srv.Last()
	if last.Method != http.MethodPost || len(last.Body) != 0 {
		t.Fatalf("cancel should be a bodyless POST, got %s %q", last.Method, last.Body)
	}
	if last.Header.Get("Idempotency-Key") == "" {
		t.Fatalf("cancel should carry an idempotency key")
	}

	if _, err := client.Migrations.Fetch(ctx, "plan_1", ""); err == nil {
		t.Fatalf("expected error for empty migration id")
	}
}
