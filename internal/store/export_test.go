package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotify-backend/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := seedFixtures(t, newTestDB(t))

	course := model.Course{Code: "BMATH", Name: "Bachelor of Mathematics", ShortName: "B.Math"}
	require.NoError(t, f.store.DB().Create(&course).Error)
	require.NoError(t, f.store.DB().Model(&model.User{}).
		Where("id = ?", f.resident.ID).
		Update("course_id", course.ID).Error)
	require.NoError(t, f.store.AddStudent(ctx, &model.EnrolledStudent{
		FullName: "Asha Verma", Email: "bmat2301@isibang.ac.in",
	}))
	_, err := f.store.BookSlot(ctx, testNow, f.machine.UUID, daysFromNow(1), 2, &f.resident)
	require.NoError(t, err)

	snap, err := f.store.Export(ctx, testNow)
	require.NoError(t, err)
	assert.Len(t, snap.Buildings, 2)
	assert.Len(t, snap.Courses, 1)
	assert.Len(t, snap.Users, 4)
	assert.Len(t, snap.Machines, 2)
	assert.Len(t, snap.Students, 1)
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, f.machine.UUID, snap.Bookings[0].MachineUUID)
	assert.Equal(t, f.resident.UUID, snap.Bookings[0].UserUUID)

	// Restore into an empty database.
	freshDB := newTestDB(t)
	fresh := NewGormStore(freshDB, testRules())
	report, err := fresh.Import(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Buildings)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 4, report.Users)
	assert.Equal(t, 2, report.Machines)
	assert.Equal(t, 1, report.Students)
	assert.Equal(t, 1, report.Bookings)
	assert.Empty(t, report.Skipped)

	// Identities survive the trip.
	m, err := fresh.GetMachine(ctx, f.machine.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Ashoka", m.Building.Name)
	u, err := fresh.GetUser(ctx, f.resident.UUID)
	require.NoError(t, err)
	require.NotNil(t, u.Course)
	assert.Equal(t, "B.Math", u.Course.ShortName)

	// A second restore of the same snapshot is a no-op.
	report, err = fresh.Import(ctx, snap)
	require.NoError(t, err)
	assert.Zero(t, report.Buildings+report.Courses+report.Users+report.Machines+report.Students+report.Bookings)
}

func TestImportSkipsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	s := NewGormStore(gdb, testRules())

	snap := &Snapshot{
		Buildings: []BuildingExport{{UUID: "b-1", Name: "Ashoka", Code: "ASH"}},
		Machines: []MachineExport{
			{UUID: "m-1", Name: "Washer", Code: "W1", BuildingUUID: "b-1", Status: "available", SlotCount: 1, SlotTemplate: "08:00-12:00"},
			{UUID: "m-2", Name: "Orphan", Code: "W2", BuildingUUID: "b-missing", Status: "available", SlotCount: 1, SlotTemplate: "08:00-12:00"},
		},
		Users: []UserExport{
			{UUID: "u-1", Username: "asha", Email: "a@example.com", FirstName: "Asha", Role: "user", BuildingUUID: "b-1"},
			{UUID: "u-2", Username: "lost", Email: "l@example.com", FirstName: "Lost", Role: "user", BuildingUUID: "b-missing"},
		},
		Bookings: []BookingExport{
			{UUID: "bk-1", MachineUUID: "m-1", UserUUID: "u-1", Date: "2025-06-10", SlotNumber: 1},
			{UUID: "bk-2", MachineUUID: "m-2", UserUUID: "u-1", Date: "2025-06-10", SlotNumber: 1},
		},
	}

	report, err := s.Import(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Buildings)
	assert.Equal(t, 1, report.Machines)
	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 1, report.Bookings)
	require.Len(t, report.Skipped, 3)
	assert.Contains(t, report.Skipped[0], "unknown building")
}

func TestImportKeepsExistingRowsOnConflict(t *testing.T) {
	ctx := context.Background()
	f := seedFixtures(t, newTestDB(t))

	// Same building name under a different UUID: the resident row wins.
	snap := &Snapshot{
		Buildings: []BuildingExport{{UUID: "imported-uuid", Name: "Ashoka", Code: "ASH"}},
	}
	report, err := f.store.Import(ctx, snap)
	require.NoError(t, err)
	assert.Zero(t, report.Buildings)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0], "name or code in use")

	var n int64
	require.NoError(t, f.store.DB().Model(&model.Building{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
