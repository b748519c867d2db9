// Package app assembles the store, repositories and services shared by the
// HTTP server and the command-line tools.
package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

type App struct {
	Store *repository.Store

	Patients     *service.PatientService
	Doctors      *service.DoctorService
	Appointments *service.AppointmentService
	Availability *service.AvailabilityService
	Activity     *service.ActivityService
	Receipts     *service.ReceiptService

	Metrics *metrics.Collector
	Log     *zap.Logger
}

func New(cfg *config.Config, db *gorm.DB, m *metrics.Collector, log *zap.Logger) *App {
	store := repository.NewStore(db)

	patientRepo := repository.NewPatientRepository(store)
	doctorRepo := repository.NewDoctorRepository(store)
	appointmentRepo := repository.NewAppointmentRepository(store)
	activityRepo := repository.NewActivityRepository(store)

	activity := service.NewActivityService(activityRepo, service.Counters{
		Patients:     patientRepo,
		Doctors:      doctorRepo,
		Appointments: appointmentRepo,
	}, cfg.Clinic.RecentActivity, log.Named("activity"), m)

	availability := service.NewAvailabilityService(
		appointmentRepo,
		cfg.Clinic.Workday(),
		cfg.Clinic.DefaultSlotMinutes,
		m,
		log.Named("availability"),
	)

	return &App{
		Store: store,
		Patients: service.NewPatientService(
			store, patientRepo, appointmentRepo, cfg.Clinic.OnDelete, activity, m, log.Named("patients"),
		),
		Doctors: service.NewDoctorService(
			store, doctorRepo, appointmentRepo, cfg.Clinic.OnDelete, activity, m, log.Named("doctors"),
		),
		Appointments: service.NewAppointmentService(
			store, appointmentRepo, patientRepo, doctorRepo, availability, activity, m, log.Named("appointments"),
		),
		Availability: availability,
		Activity:     activity,
		Receipts:     service.NewReceiptService(patientRepo, appointmentRepo),
		Metrics:      m,
		Log:          log,
	}
}

// Close drains the activity feed before releasing the database.
func (a *App) Close() error {
	a.Activity.Shutdown()
	return a.Store.Close()
}
