package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Clinic: config.ClinicConfig{
			WorkdayStart:       "09:00",
			WorkdayEnd:         "17:00",
			DefaultSlotMinutes: 30,
			OnDelete:           domain.DeleteRetain,
			RecentActivity:     5,
		},
	}

	db, err := database.Connect(cfg.Database, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	reg := prometheus.NewRegistry()
	a := New(cfg, db, metrics.NewCollectorWith("test", reg, reg), zap.NewNop())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func seed(t *testing.T, a *App) (patientID, doctorID int64) {
	t.Helper()
	ctx := context.Background()

	p, err := a.Patients.CreatePatient(ctx, &patient.CreatePatientCommand{
		Name: "Ada Lovelace", Age: 36, Gender: domain.GenderFemale, AdmissionDate: "2024-03-01",
	})
	require.NoError(t, err)
	d, err := a.Doctors.CreateDoctor(ctx, &doctor.CreateDoctorCommand{
		Name: "Gregory House", Specialization: "Diagnostics", Experience: 20, Gender: domain.GenderMale,
	})
	require.NoError(t, err)
	return p.ID, d.ID
}

func TestScheduleAppointment_ConcurrentSameSlotBooksOnce(t *testing.T) {
	a := newTestApp(t)
	patientID, doctorID := seed(t, a)
	ctx := context.Background()

	const callers = 20
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = a.Appointments.ScheduleAppointment(ctx, &appointment.ScheduleAppointmentCommand{
				PatientID: patientID,
				DoctorID:  doctorID,
				Date:      "2024-03-15",
				StartTime: "10:00",
				EndTime:   "10:30",
			})
		}()
	}
	close(start)
	wg.Wait()

	var booked, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, appointment.ErrAppointmentConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, booked)
	assert.Equal(t, callers-1, conflicts)

	day, err := a.Appointments.ListForDoctorOnDate(ctx, doctorID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "10:00-10:30", day[0].Interval().String())
}

func TestScheduleAppointment_ConcurrentDistinctSlotsAllBook(t *testing.T) {
	a := newTestApp(t)
	patientID, doctorID := seed(t, a)
	ctx := context.Background()

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := 9*60 + i*30
			_, errs[i] = a.Appointments.ScheduleAppointment(ctx, &appointment.ScheduleAppointmentCommand{
				PatientID: patientID,
				DoctorID:  doctorID,
				Date:      "2024-03-15",
				StartTime: fmt.Sprintf("%02d:%02d", start/60, start%60),
				EndTime:   fmt.Sprintf("%02d:%02d", (start+30)/60, (start+30)%60),
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "slot %d", i)
	}

	slots, err := a.Availability.FreeSlots(ctx, doctorID, "2024-03-15", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
