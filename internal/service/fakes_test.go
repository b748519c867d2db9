package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

var errStoreDown = domain.StoreError("fake", errors.New("connection refused"))

type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(ctx)
}

type fakePatients struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*patient.Patient
	err    error
}

func newFakePatients() *fakePatients {
	return &fakePatients{rows: map[int64]*patient.Patient{}}
}

func (f *fakePatients) Create(_ context.Context, p *patient.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatients) Update(_ context.Context, p *patient.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return patient.ErrPatientNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePatients) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

func (f *fakePatients) List(_ context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*patient.Patient{}
	for _, p := range f.rows {
		if q.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakePatients) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakePatients) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeDoctors struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*doctor.Doctor
	locked []int64
}

func newFakeDoctors() *fakeDoctors {
	return &fakeDoctors{rows: map[int64]*doctor.Doctor{}}
}

func (f *fakeDoctors) Create(_ context.Context, d *doctor.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d.ID = f.nextID
	cp := *d
	f.rows[d.ID] = &cp
	return nil
}

func (f *fakeDoctors) GetByID(_ context.Context, id int64) (*doctor.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) Update(_ context.Context, d *doctor.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[d.ID]; !ok {
		return doctor.ErrDoctorNotFound
	}
	cp := *d
	f.rows[d.ID] = &cp
	return nil
}

func (f *fakeDoctors) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

func (f *fakeDoctors) List(_ context.Context, _ *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*doctor.Doctor{}
	for _, d := range f.rows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDoctors) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeDoctors) Lock(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	f.locked = append(f.locked, id)
	return nil
}

func (f *fakeDoctors) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeAppointments struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*appointment.Appointment
	patients *fakePatients
	doctors  *fakeDoctors
	err      error

	// lockedOnRead records, per schedule read, whether the doctor was
	// already locked.
	lockedOnRead []bool
}

func newFakeAppointments(patients *fakePatients, doctors *fakeDoctors) *fakeAppointments {
	return &fakeAppointments{rows: map[int64]*appointment.Appointment{}, patients: patients, doctors: doctors}
}

func (f *fakeAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAppointments) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

func (f *fakeAppointments) listing(a *appointment.Appointment) *appointment.Listing {
	l := &appointment.Listing{Appointment: *a}
	if p, ok := f.patients.rows[a.PatientID]; ok {
		l.PatientName = p.Name
	}
	if d, ok := f.doctors.rows[a.DoctorID]; ok {
		l.DoctorName = d.Name
		l.DoctorSpecialization = d.Specialization
	}
	return l
}

func (f *fakeAppointments) GetByID(_ context.Context, id int64) (*appointment.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return f.listing(a), nil
}

func (f *fakeAppointments) List(_ context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var searchID int64
	if q.ByID && q.Search != "" {
		id, err := strconv.ParseInt(q.Search, 10, 64)
		if err != nil {
			return []*appointment.Listing{}, nil
		}
		searchID = id
	}

	out := []*appointment.Listing{}
	for _, a := range f.rows {
		switch {
		case q.PatientID != 0 && a.PatientID != q.PatientID,
			q.DoctorID != 0 && a.DoctorID != q.DoctorID,
			q.Date != nil && !a.Date.Equal(*q.Date),
			searchID != 0 && a.ID != searchID:
			continue
		}
		out = append(out, f.listing(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f *fakeAppointments) ListByDoctorOnDate(_ context.Context, doctorID int64, date calendar.Date) ([]*appointment.Appointment, error) {
	f.doctors.mu.Lock()
	locked := slices.Contains(f.doctors.locked, doctorID)
	f.doctors.mu.Unlock()

	f.mu.Lock()
	f.lockedOnRead = append(f.lockedOnRead, locked)
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*appointment.Appointment{}
	for _, a := range f.rows {
		if a.DoctorID == doctorID && a.Date.Equal(date) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeAppointments) deleteWhere(match func(*appointment.Appointment) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, a := range f.rows {
		if match(a) {
			delete(f.rows, id)
			n++
		}
	}
	return n
}

func (f *fakeAppointments) DeleteByPatient(_ context.Context, patientID int64) (int64, error) {
	return f.deleteWhere(func(a *appointment.Appointment) bool { return a.PatientID == patientID }), nil
}

func (f *fakeAppointments) DeleteByDoctor(_ context.Context, doctorID int64) (int64, error) {
	return f.deleteWhere(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (f *fakeAppointments) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []*domain.ActivityEntry
}

func (f *fakeActivity) Create(_ context.Context, e *domain.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeActivity) Recent(_ context.Context, limit int) ([]*domain.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ActivityEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeActivity) snapshot() []*domain.ActivityEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.ActivityEntry(nil), f.entries...)
}

// harness wires every service to in-memory fakes.
type harness struct {
	tx           *fakeTx
	patients     *fakePatients
	doctors      *fakeDoctors
	appointments *fakeAppointments
	activityRepo *fakeActivity
	metrics      *metrics.Collector

	activity     *ActivityService
	availability *AvailabilityService
	appointment  *AppointmentService
	patient      *PatientService
	doctor       *DoctorService
	receipt      *ReceiptService
}

func newHarness(t *testing.T, policy domain.DeletePolicy) *harness {
	t.Helper()

	h := &harness{
		tx:           &fakeTx{},
		patients:     newFakePatients(),
		doctors:      newFakeDoctors(),
		activityRepo: &fakeActivity{},
		metrics:      metrics.NewCollector("test"),
	}
	h.appointments = newFakeAppointments(h.patients, h.doctors)

	log := zap.NewNop()
	workday := calendar.NewInterval(calendar.NewClock(9, 0), calendar.NewClock(17, 0))

	h.activity = NewActivityService(h.activityRepo, Counters{
		Patients:     h.patients,
		Doctors:      h.doctors,
		Appointments: h.appointments,
	}, 5, log, h.metrics)
	t.Cleanup(h.activity.Shutdown)

	h.availability = NewAvailabilityService(h.appointments, workday, 30, h.metrics, log)
	h.appointment = NewAppointmentService(h.tx, h.appointments, h.patients, h.doctors, h.availability, h.activity, h.metrics, log)
	h.patient = NewPatientService(h.tx, h.patients, h.appointments, policy, h.activity, h.metrics, log)
	h.doctor = NewDoctorService(h.tx, h.doctors, h.appointments, policy, h.activity, h.metrics, log)
	h.receipt = NewReceiptService(h.patients, h.appointments)
	return h
}

func (h *harness) addPatient(t *testing.T, name string) *patient.Patient {
	t.Helper()
	p := &patient.Patient{Name: name, Age: 30, Gender: domain.GenderOther, AdmissionDate: calendar.NewDate(2024, 1, 1)}
	if err := h.patients.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (h *harness) addDoctor(t *testing.T, name, specialization string) *doctor.Doctor {
	t.Helper()
	d := &doctor.Doctor{Name: name, Specialization: specialization, Experience: 5, Gender: domain.GenderFemale}
	if err := h.doctors.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	return d
}

func booking(patientID, doctorID int64, date, start, end string) *appointment.ScheduleAppointmentCommand {
	return &appointment.ScheduleAppointmentCommand{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func allAppointments() *appointment.ListAppointmentsQuery {
	return &appointment.ListAppointmentsQuery{}
}
