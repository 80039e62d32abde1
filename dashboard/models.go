package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status values accepted by the write endpoints.
var (
	InspectionStatuses  = []string{"PENDING", "IN_PROGRESS", "COMPLETED", "FAILED"}
	TaskStatuses        = []string{"PENDING", "IN_PROGRESS", "COMPLETED"}
	AppointmentStatuses = []string{"SCHEDULED", "COMPLETED", "CANCELLED"}
)

// Location is the last reported position of a container.
type Location struct {
	ID          int64     `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ContainerID string    `json:"container_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LocationInput updates a container position.
type LocationInput struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks coordinate ranges.
func (in LocationInput) Validate() error {
	if in.Lat < -90 || in.Lat > 90 {
		return invalid("lat must be between -90 and 90")
	}
	if in.Lng < -180 || in.Lng > 180 {
		return invalid("lng must be between -180 and 180")
	}
	return nil
}

// History is one event in a container's lifecycle.
type History struct {
	ID          int64     `json:"id"`
	Event       string    `json:"event"`
	Description *string   `json:"description"`
	ContainerID string    `json:"container_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryInput records a history event.
type HistoryInput struct {
	Event       string  `json:"event"`
	Description *string `json:"description"`
}

// Validate requires an event name.
func (in HistoryInput) Validate() error {
	return required("event", in.Event)
}

// DamageReport is a damage observation with optional photo URLs.
type DamageReport struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	ReportedBy  string    `json:"reported_by"`
	Photos      []string  `json:"photos"`
	ContainerID string    `json:"container_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DamageInput files a damage report.
type DamageInput struct {
	Description string   `json:"description"`
	ReportedBy  string   `json:"reported_by"`
	Photos      []string `json:"photos"`
}

// Validate requires a description and reporter.
func (in DamageInput) Validate() error {
	if err := required("description", in.Description); err != nil {
		return err
	}
	return required("reported_by", in.ReportedBy)
}

// CustomsInspection is a customs check on a container.
type CustomsInspection struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	InspectedBy *string   `json:"inspected_by"`
	ContainerID string    `json:"container_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomsInput records an inspection.
type CustomsInput struct {
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
	InspectedBy *string `json:"inspected_by"`
}

// Validate checks the inspection status.
func (in CustomsInput) Validate() error {
	return oneOf("status", in.Status, InspectionStatuses)
}

// Task is a yard work item.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Assignee    *string   `json:"assignee"`
	ContainerID *string   `json:"container_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput creates or replaces a task.
type TaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Assignee    *string `json:"assignee"`
	ContainerID *string `json:"container_id"`
}

// Validate requires a title and a known status.
func (in TaskInput) Validate() error {
	if err := required("title", in.Title); err != nil {
		return err
	}
	return oneOf("status", in.Status, TaskStatuses)
}

// Appointment is a truck gate appointment.
type Appointment struct {
	ID              int64     `json:"id"`
	TruckingCompany string    `json:"trucking_company"`
	DriverName      string    `json:"driver_name"`
	LicensePlate    string    `json:"license_plate"`
	AppointmentTime string    `json:"appointment_time"`
	Status          string    `json:"status"`
	ContainerID     *string   `json:"container_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AppointmentInput creates or replaces an appointment.
type AppointmentInput struct {
	TruckingCompany string  `json:"trucking_company"`
	DriverName      string  `json:"driver_name"`
	LicensePlate    string  `json:"license_plate"`
	AppointmentTime string  `json:"appointment_time"`
	Status          string  `json:"status"`
	ContainerID     *string `json:"container_id"`
}

// Validate requires every descriptive field and a known status.
func (in AppointmentInput) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"trucking_company", in.TruckingCompany},
		{"driver_name", in.DriverName},
		{"license_plate", in.LicensePlate},
		{"appointment_time", in.AppointmentTime},
	} {
		if err := required(f.name, f.v); err != nil {
			return err
		}
	}
	return oneOf("status", in.Status, AppointmentStatuses)
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field + " is required")
	}
	return nil
}

func oneOf(field, v string, allowed []string) error {
	if !slices.Contains(allowed, v) {
		return invalid(fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
	}
	return nil
}
