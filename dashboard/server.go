package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/opsdash/cache"
	"github.com/jonwraymond/opsdash/observe"
)

// maxBodyBytes bounds write request bodies.
const maxBodyBytes = 10 << 20

// ServerConfig configures a Server.
type ServerConfig struct {
	// Name and Version are reported by the root status route.
	Name    string
	Version string

	// Identity, if set, wraps every route so handlers and the cache keyer
	// see the caller's identity.
	Identity func(http.Handler) http.Handler

	Logger observe.Logger
}

// Server routes dashboard requests to a Repository.
type Server struct {
	repo   Repository
	cached *cache.HTTPMiddleware
	config ServerConfig
	now    func() time.Time
}

// NewServer creates a Server. Read routes are served through cached.
func NewServer(repo Repository, cached *cache.HTTPMiddleware, config ServerConfig) *Server {
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}
	if config.Name == "" {
		config.Name = "opsdash"
	}
	if config.Identity == nil {
		config.Identity = func(h http.Handler) http.Handler { return h }
	}
	return &Server{repo: repo, cached: cached, config: config, now: time.Now}
}

// Register mounts the dashboard routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	read := func(pattern string, h cache.JSONHandler) {
		mux.Handle("GET "+pattern, s.config.Identity(s.cached.Handler(h)))
	}
	write := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.config.Identity(h))
	}

	read("/{$}", s.status)

	read("/api/location/{id}", s.getLocation)
	write("POST /api/location/{id}", s.updateLocation)

	read("/api/history/{id}", s.getHistory)
	write("POST /api/history/{id}", s.addHistory)

	read("/api/damage/{id}", s.getDamage)
	write("POST /api/damage/{id}", s.addDamage)

	read("/api/customs/{id}", s.getInspections)
	write("POST /api/customs/{id}", s.addInspection)

	read("/api/tasks", s.getTasks)
	write("POST /api/tasks", s.createTask)
	write("PUT /api/tasks/{id}", s.updateTask)
	write("DELETE /api/tasks/{id}", s.deleteTask)

	read("/api/appointments", s.getAppointments)
	read("/api/appointments/company/{name}", s.getAppointmentsByCompany)
	write("POST /api/appointments", s.createAppointment)
	write("PUT /api/appointments/{id}", s.updateAppointment)
	write("DELETE /api/appointments/{id}", s.deleteAppointment)
}

// StatusReport is the body of the root route.
type StatusReport struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) status(*http.Request) (any, error) {
	return StatusReport{
		Status:    "online",
		Message:   s.config.Name + " backend API",
		Version:   s.config.Version,
		Timestamp: s.now().UTC(),
	}, nil
}

func (s *Server) getLocation(r *http.Request) (any, error) {
	loc, err := s.repo.Location(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		return nil, cache.NotFound("Location not found")
	}
	return loc, err
}

func (s *Server) getHistory(r *http.Request) (any, error) {
	return s.repo.History(r.Context(), r.PathValue("id"))
}

func (s *Server) getDamage(r *http.Request) (any, error) {
	return s.repo.DamageReports(r.Context(), r.PathValue("id"))
}

func (s *Server) getInspections(r *http.Request) (any, error) {
	return s.repo.Inspections(r.Context(), r.PathValue("id"))
}

func (s *Server) getTasks(r *http.Request) (any, error) {
	return s.repo.Tasks(r.Context())
}

func (s *Server) getAppointments(r *http.Request) (any, error) {
	return s.repo.Appointments(r.Context())
}

func (s *Server) getAppointmentsByCompany(r *http.Request) (any, error) {
	return s.repo.AppointmentsByCompany(r.Context(), r.PathValue("name"))
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	var in LocationInput
	s.mutate(w, r, &in, http.StatusOK, func(ctx context.Context) (any, error) {
		return s.repo.UpsertLocation(ctx, r.PathValue("id"), in)
	})
}

func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	var in HistoryInput
	s.mutate(w, r, &in, http.StatusCreated, func(ctx context.Context) (any, error) {
		return s.repo.AddHistory(ctx, r.PathValue("id"), in)
	})
}

func (s *Server) addDamage(w http.ResponseWriter, r *http.Request) {
	var in DamageInput
	s.mutate(w, r, &in, http.StatusCreated, func(ctx context.Context) (any, error) {
		return s.repo.AddDamageReport(ctx, r.PathValue("id"), in)
	})
}

func (s *Server) addInspection(w http.ResponseWriter, r *http.Request) {
	var in CustomsInput
	s.mutate(w, r, &in, http.StatusCreated, func(ctx context.Context) (any, error) {
		return s.repo.AddInspection(ctx, r.PathValue("id"), in)
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in TaskInput
	s.mutate(w, r, &in, http.StatusCreated, func(ctx context.Context) (any, error) {
		return s.repo.CreateTask(ctx, in)
	})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var in TaskInput
	s.mutate(w, r, &in, http.StatusOK, func(ctx context.Context) (any, error) {
		t, err := s.repo.UpdateTask(ctx, id, in)
		if errors.Is(err, ErrNotFound) {
			return nil, cache.NotFound("Task not found")
		}
		return t, err
	})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.remove(w, r, "Task not found", func(ctx context.Context) error {
		return s.repo.DeleteTask(ctx, id)
	})
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var in AppointmentInput
	s.mutate(w, r, &in, http.StatusCreated, func(ctx context.Context) (any, error) {
		return s.repo.CreateAppointment(ctx, in)
	})
}

func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var in AppointmentInput
	s.mutate(w, r, &in, http.StatusOK, func(ctx context.Context) (any, error) {
		a, err := s.repo.UpdateAppointment(ctx, id, in)
		if errors.Is(err, ErrNotFound) {
			return nil, cache.NotFound("Appointment not found")
		}
		return a, err
	})
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.remove(w, r, "Appointment not found", func(ctx context.Context) error {
		return s.repo.DeleteAppointment(ctx, id)
	})
}

// mutate decodes the body into in, runs op and writes its result with code.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, in any, code int, op func(context.Context) (any, error)) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(in); err != nil {
		cache.WriteJSON(w, http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return
	}
	v, err := op(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cache.WriteJSON(w, code, v)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, notFound string, op func(context.Context) error) {
	err := op(r.Context())
	switch {
	case errors.Is(err, ErrNotFound):
		cache.WriteJSON(w, http.StatusNotFound, errorBody(notFound))
	case err != nil:
		s.fail(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *ValidationError
		se *cache.StatusError
	)
	switch {
	case errors.As(err, &ve):
		cache.WriteJSON(w, http.StatusBadRequest, errorBody("Validation error: "+ve.Msg))
	case errors.As(err, &se):
		cache.WriteJSON(w, se.Code, errorBody(se.Message))
	default:
		s.config.Logger.Error(r.Context(), "repository error",
			observe.F("path", r.URL.Path),
			observe.F("error", err.Error()),
		)
		cache.WriteJSON(w, http.StatusInternalServerError, errorBody("Database error"))
	}
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		cache.WriteJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return 0, false
	}
	return id, true
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
