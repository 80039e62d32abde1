package dashboard

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// Repository stores dashboard records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: lookups of a missing record return ErrNotFound.
// - Ownership: returned values are copies; callers may modify them.
type Repository interface {
	Location(ctx context.Context, containerID string) (Location, error)
	UpsertLocation(ctx context.Context, containerID string, in LocationInput) (Location, error)

	History(ctx context.Context, containerID string) ([]History, error)
	AddHistory(ctx context.Context, containerID string, in HistoryInput) (History, error)

	DamageReports(ctx context.Context, containerID string) ([]DamageReport, error)
	AddDamageReport(ctx context.Context, containerID string, in DamageInput) (DamageReport, error)

	Inspections(ctx context.Context, containerID string) ([]CustomsInspection, error)
	AddInspection(ctx context.Context, containerID string, in CustomsInput) (CustomsInspection, error)

	Tasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, in TaskInput) (Task, error)
	UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error)
	DeleteTask(ctx context.Context, id int64) error

	Appointments(ctx context.Context) ([]Appointment, error)
	AppointmentsByCompany(ctx context.Context, company string) ([]Appointment, error)
	CreateAppointment(ctx context.Context, in AppointmentInput) (Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, in AppointmentInput) (Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

// MemoryRepository is an in-memory Repository. Contents are lost on restart.
type MemoryRepository struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	locations    map[string]Location
	history      []History
	damage       []DamageReport
	inspections  []CustomsInspection
	tasks        map[int64]Task
	appointments map[int64]Appointment
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithNow sets the clock used for record timestamps.
func WithNow(now func() time.Time) MemoryOption {
	return func(r *MemoryRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{
		now:          time.Now,
		locations:    make(map[string]Location),
		tasks:        make(map[int64]Task),
		appointments: make(map[int64]Appointment),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// nextID must be called with mu held.
func (r *MemoryRepository) nextID() int64 {
	r.seq++
	return r.seq
}

func (r *MemoryRepository) Location(_ context.Context, containerID string) (Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.locations[containerID]
	if !ok {
		return Location{}, ErrNotFound
	}
	return loc, nil
}

func (r *MemoryRepository) UpsertLocation(_ context.Context, containerID string, in LocationInput) (Location, error) {
	if err := in.Validate(); err != nil {
		return Location{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	loc, ok := r.locations[containerID]
	if !ok {
		loc = Location{ID: r.nextID(), ContainerID: containerID, CreatedAt: now}
	}
	loc.Lat, loc.Lng, loc.UpdatedAt = in.Lat, in.Lng, now
	r.locations[containerID] = loc
	return loc, nil
}

// History returns events newest first.
func (r *MemoryRepository) History(_ context.Context, containerID string) ([]History, error) {
	r.mu.RLock()
	out := filterByContainer(r.history, func(h History) string { return h.ContainerID }, containerID)
	r.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b History) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

func (r *MemoryRepository) AddHistory(_ context.Context, containerID string, in HistoryInput) (History, error) {
	if err := in.Validate(); err != nil {
		return History{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := History{
		ID:          r.nextID(),
		Event:       in.Event,
		Description: in.Description,
		ContainerID: containerID,
		CreatedAt:   r.now(),
	}
	r.history = append(r.history, h)
	return h, nil
}

func (r *MemoryRepository) DamageReports(_ context.Context, containerID string) ([]DamageReport, error) {
	r.mu.RLock()
	out := filterByContainer(r.damage, func(d DamageReport) string { return d.ContainerID }, containerID)
	r.mu.RUnlock()
	for i := range out {
		out[i].Photos = slices.Clone(out[i].Photos)
	}
	return out, nil
}

func (r *MemoryRepository) AddDamageReport(_ context.Context, containerID string, in DamageInput) (DamageReport, error) {
	if err := in.Validate(); err != nil {
		return DamageReport{}, err
	}
	photos := slices.Clone(in.Photos)
	if photos == nil {
		photos = []string{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := DamageReport{
		ID:          r.nextID(),
		Description: in.Description,
		ReportedBy:  in.ReportedBy,
		Photos:      photos,
		ContainerID: containerID,
		CreatedAt:   r.now(),
	}
	r.damage = append(r.damage, d)
	return d, nil
}

func (r *MemoryRepository) Inspections(_ context.Context, containerID string) ([]CustomsInspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterByContainer(r.inspections, func(c CustomsInspection) string { return c.ContainerID }, containerID), nil
}

func (r *MemoryRepository) AddInspection(_ context.Context, containerID string, in CustomsInput) (CustomsInspection, error) {
	if err := in.Validate(); err != nil {
		return CustomsInspection{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := CustomsInspection{
		ID:          r.nextID(),
		Status:      in.Status,
		Notes:       in.Notes,
		InspectedBy: in.InspectedBy,
		ContainerID: containerID,
		CreatedAt:   r.now(),
	}
	r.inspections = append(r.inspections, c)
	return c, nil
}

// Tasks returns all tasks newest first.
func (r *MemoryRepository) Tasks(_ context.Context) ([]Task, error) {
	r.mu.RLock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Task) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

func (r *MemoryRepository) CreateTask(_ context.Context, in TaskInput) (Task, error) {
	if err := in.Validate(); err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	t := Task{ID: r.nextID(), CreatedAt: now}
	t.apply(in, now)
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepository) UpdateTask(_ context.Context, id int64, in TaskInput) (Task, error) {
	if err := in.Validate(); err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	t.apply(in, r.now())
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (t *Task) apply(in TaskInput, now time.Time) {
	t.Title = in.Title
	t.Description = in.Description
	t.Status = in.Status
	t.Assignee = in.Assignee
	t.ContainerID = in.ContainerID
	t.UpdatedAt = now
}

// Appointments returns all appointments by appointment time.
func (r *MemoryRepository) Appointments(_ context.Context) ([]Appointment, error) {
	return r.appointmentsWhere(func(Appointment) bool { return true }), nil
}

func (r *MemoryRepository) AppointmentsByCompany(_ context.Context, company string) ([]Appointment, error) {
	return r.appointmentsWhere(func(a Appointment) bool { return a.TruckingCompany == company }), nil
}

func (r *MemoryRepository) appointmentsWhere(keep func(Appointment) bool) []Appointment {
	r.mu.RLock()
	out := make([]Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Appointment) int {
		return cmp.Or(cmp.Compare(a.AppointmentTime, b.AppointmentTime), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, in AppointmentInput) (Appointment, error) {
	if err := in.Validate(); err != nil {
		return Appointment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	a := Appointment{ID: r.nextID(), CreatedAt: now}
	a.apply(in, now)
	r.appointments[a.ID] = a
	return a, nil
}

func (r *MemoryRepository) UpdateAppointment(_ context.Context, id int64, in AppointmentInput) (Appointment, error) {
	if err := in.Validate(); err != nil {
		return Appointment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	a.apply(in, r.now())
	r.appointments[id] = a
	return a, nil
}

func (r *MemoryRepository) DeleteAppointment(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (a *Appointment) apply(in AppointmentInput, now time.Time) {
	a.TruckingCompany = in.TruckingCompany
	a.DriverName = in.DriverName
	a.LicensePlate = in.LicensePlate
	a.AppointmentTime = in.AppointmentTime
	a.Status = in.Status
	a.ContainerID = in.ContainerID
	a.UpdatedAt = now
}

func filterByContainer[T any](items []T, id func(T) string, containerID string) []T {
	out := make([]T, 0)
	for _, it := range items {
		if id(it) == containerID {
			out = append(out, it)
		}
	}
	return out
}

var _ Repository = (*MemoryRepository)(nil)
