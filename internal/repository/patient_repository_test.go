package repository

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
)

func TestPatientRepository_CRUD(t *testing.T) {
	store := newTestStore(t)
	repo := NewPatientRepository(store)
	ctx := context.Background()

	p := seedPatient(t, store, "Grace Hopper", "Flu")
	require.NotZero(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", got.Name)
	assert.Equal(t, "2024-01-10", got.AdmissionDate.String())

	got.Diagnosis = "Recovered"
	got.Age = 41
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", got.Diagnosis)
	assert.Equal(t, 41, got.Age)

	ok, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	err = repo.Update(ctx, &patient.Patient{ID: p.ID, Name: "x", Age: 1})
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
}

func TestPatientRepository_List(t *testing.T) {
	store := newTestStore(t)
	repo := NewPatientRepository(store)
	ctx := context.Background()

	zoe := seedPatient(t, store, "Zoe", "Asthma")
	seedPatient(t, store, "adam", "fracture")
	seedPatient(t, store, "Mia", "100% recovered")

	all, err := repo.List(ctx, &patient.ListPatientsQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	byName, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "ZO"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, zoe.ID, byName[0].ID)

	byDiagnosis, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "fract"})
	require.NoError(t, err)
	require.Len(t, byDiagnosis, 1)
	assert.Equal(t, "adam", byDiagnosis[0].Name)

	literalPercent, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "0%"})
	require.NoError(t, err)
	require.Len(t, literalPercent, 1)
	assert.Equal(t, "Mia", literalPercent[0].Name)

	byID, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "  " + strconv.FormatInt(zoe.ID, 10), ByID: true})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Zoe", byID[0].Name)

	nonNumeric, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "abc", ByID: true})
	require.NoError(t, err)
	assert.NotNil(t, nonNumeric)
	assert.Empty(t, nonNumeric)
}

func TestPatientRepository_ExistsAndCount(t *testing.T) {
	store := newTestStore(t)
	repo := NewPatientRepository(store)
	ctx := context.Background()

	p := seedPatient(t, store, "Ada", "")

	ok, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, p.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
