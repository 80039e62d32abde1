package dashboard

import "context"

func ptr(s string) *string { return &s }

// Seed loads a small demo data set into repo.
func Seed(ctx context.Context, repo Repository) error {
	locations := map[string]LocationInput{
		"ABC123":      {Lat: 1.2644, Lng: 103.8222},
		"MSCU1234567": {Lat: 51.9496, Lng: 4.1453},
	}
	for id, in := range locations {
		if _, err := repo.UpsertLocation(ctx, id, in); err != nil {
			return err
		}
	}

	steps := []func() error{
		func() error {
			_, err := repo.AddHistory(ctx, "ABC123", HistoryInput{Event: "GATE_IN", Description: ptr("Arrived by truck")})
			return err
		},
		func() error {
			_, err := repo.AddHistory(ctx, "ABC123", HistoryInput{Event: "YARD_MOVE", Description: ptr("Block C, row 4")})
			return err
		},
		func() error {
			_, err := repo.AddDamageReport(ctx, "ABC123", DamageInput{
				Description: "Dented door panel",
				ReportedBy:  "checker-07",
				Photos:      []string{"https://photos.example/abc123-door.jpg"},
			})
			return err
		},
		func() error {
			_, err := repo.AddInspection(ctx, "MSCU1234567", CustomsInput{Status: "PENDING", InspectedBy: ptr("customs-2")})
			return err
		},
		func() error {
			_, err := repo.CreateTask(ctx, TaskInput{Title: "Move ABC123 to berth 3", Status: "PENDING", ContainerID: ptr("ABC123")})
			return err
		},
		func() error {
			_, err := repo.CreateAppointment(ctx, AppointmentInput{
				TruckingCompany: "Harbor Haulage",
				DriverName:      "J. Tan",
				LicensePlate:    "SGX1234A",
				AppointmentTime: "2026-01-15T09:00:00Z",
				Status:          "SCHEDULED",
				ContainerID:     ptr("ABC123"),
			})
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
