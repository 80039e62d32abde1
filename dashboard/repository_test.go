package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestRepo() *MemoryRepository {
	c := &tick{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemoryRepository(WithNow(c.now))
}

func TestMemoryRepository_Location(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	if _, err := r.Location(ctx, "ABC123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Location() error = %v, want ErrNotFound", err)
	}

	first, err := r.UpsertLocation(ctx, "ABC123", LocationInput{Lat: 1, Lng: 2})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.UpsertLocation(ctx, "ABC123", LocationInput{Lat: 3, Lng: 4})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("upsert replaced identity: %+v vs %+v", first, second)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("UpdatedAt not advanced")
	}

	got, _ := r.Location(ctx, "ABC123")
	if got.Lat != 3 || got.Lng != 4 {
		t.Errorf("Location() = %+v", got)
	}
}

func TestLocationInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   LocationInput
		ok   bool
	}{
		{"origin", LocationInput{}, true},
		{"bounds", LocationInput{Lat: -90, Lng: 180}, true},
		{"lat high", LocationInput{Lat: 90.1}, false},
		{"lng low", LocationInput{Lng: -180.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not match ErrValidation", err)
			}
		})
	}
}

func TestInputs_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   interface{ Validate() error }
		ok   bool
	}{
		{"history ok", HistoryInput{Event: "GATE_IN"}, true},
		{"history blank", HistoryInput{Event: "  "}, false},
		{"damage ok", DamageInput{Description: "dent", ReportedBy: "x"}, true},
		{"damage no reporter", DamageInput{Description: "dent"}, false},
		{"customs ok", CustomsInput{Status: "FAILED"}, true},
		{"customs bad status", CustomsInput{Status: "DONE"}, false},
		{"task ok", TaskInput{Title: "t", Status: "PENDING"}, true},
		{"task failed status", TaskInput{Title: "t", Status: "FAILED"}, false},
		{"appointment ok", AppointmentInput{"co", "d", "p", "2026-01-01T00:00:00Z", "SCHEDULED", nil}, true},
		{"appointment no plate", AppointmentInput{"co", "d", "", "2026-01-01T00:00:00Z", "SCHEDULED", nil}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestMemoryRepository_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	for _, ev := range []string{"GATE_IN", "YARD_MOVE", "LOADED"} {
		if _, err := r.AddHistory(ctx, "ABC123", HistoryInput{Event: ev}); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = r.AddHistory(ctx, "OTHER", HistoryInput{Event: "GATE_IN"})

	got, _ := r.History(ctx, "ABC123")
	if len(got) != 3 || got[0].Event != "LOADED" || got[2].Event != "GATE_IN" {
		t.Errorf("History() = %+v", got)
	}

	empty, _ := r.History(ctx, "NONE")
	if empty == nil || len(empty) != 0 {
		t.Errorf("History(unknown) = %#v, want empty slice", empty)
	}
}

func TestMemoryRepository_DamagePhotos(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	d, _ := r.AddDamageReport(ctx, "ABC123", DamageInput{Description: "dent", ReportedBy: "x"})
	if d.Photos == nil {
		t.Error("Photos nil, want empty slice")
	}

	_, _ = r.AddDamageReport(ctx, "ABC123", DamageInput{Description: "scratch", ReportedBy: "x", Photos: []string{"a.jpg"}})
	got, _ := r.DamageReports(ctx, "ABC123")
	got[1].Photos[0] = "mutated"
	again, _ := r.DamageReports(ctx, "ABC123")
	if again[1].Photos[0] != "a.jpg" {
		t.Error("returned photos alias repository state")
	}
}

func TestMemoryRepository_Inspections(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	if _, err := r.AddInspection(ctx, "ABC123", CustomsInput{Status: "BOGUS"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	_, _ = r.AddInspection(ctx, "ABC123", CustomsInput{Status: "PENDING"})
	got, _ := r.Inspections(ctx, "ABC123")
	if len(got) != 1 || got[0].Status != "PENDING" {
		t.Errorf("Inspections() = %+v", got)
	}
}

func TestMemoryRepository_Tasks(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	a, _ := r.CreateTask(ctx, TaskInput{Title: "first", Status: "PENDING"})
	b, _ := r.CreateTask(ctx, TaskInput{Title: "second", Status: "PENDING"})

	tasks, _ := r.Tasks(ctx)
	if len(tasks) != 2 || tasks[0].ID != b.ID {
		t.Errorf("Tasks() = %+v, want newest first", tasks)
	}

	updated, err := r.UpdateTask(ctx, a.ID, TaskInput{Title: "first", Status: "COMPLETED"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != "COMPLETED" || !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("UpdateTask() = %+v", updated)
	}

	if _, err := r.UpdateTask(ctx, 999, TaskInput{Title: "x", Status: "PENDING"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask(missing) = %v", err)
	}
	if err := r.DeleteTask(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteTask(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTask() = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepository_Appointments(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	mk := func(company, at string) AppointmentInput {
		return AppointmentInput{company, "driver", "PLATE", at, "SCHEDULED", nil}
	}
	late, _ := r.CreateAppointment(ctx, mk("Harbor", "2026-01-02T10:00:00Z"))
	_, _ = r.CreateAppointment(ctx, mk("Harbor", "2026-01-01T08:00:00Z"))
	_, _ = r.CreateAppointment(ctx, mk("Coastal", "2026-01-01T09:00:00Z"))

	all, _ := r.Appointments(ctx)
	if len(all) != 3 || all[0].AppointmentTime != "2026-01-01T08:00:00Z" || all[2].ID != late.ID {
		t.Errorf("Appointments() = %+v, want ascending time", all)
	}

	harbor, _ := r.AppointmentsByCompany(ctx, "Harbor")
	if len(harbor) != 2 {
		t.Errorf("AppointmentsByCompany() = %d, want 2", len(harbor))
	}

	if _, err := r.UpdateAppointment(ctx, late.ID, AppointmentInput{"Harbor", "d", "p", "t", "CANCELLED", nil}); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteAppointment(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAppointment(missing) = %v", err)
	}
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, _ = r.UpsertLocation(ctx, "ABC123", LocationInput{Lat: float64(i)})
				_, _ = r.Location(ctx, "ABC123")
				_, _ = r.CreateTask(ctx, TaskInput{Title: "t", Status: "PENDING"})
				_, _ = r.Tasks(ctx)
			}
		}()
	}
	wg.Wait()
	tasks, _ := r.Tasks(ctx)
	if len(tasks) != 400 {
		t.Errorf("tasks = %d, want 400", len(tasks))
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	if err := Seed(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Location(ctx, "ABC123"); err != nil {
		t.Errorf("seeded location missing: %v", err)
	}
	if tasks, _ := r.Tasks(ctx); len(tasks) == 0 {
		t.Error("no seeded tasks")
	}
}
