package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func regularSession(slotID int64, date time.Time) *model.ClinicSession {
	return &model.ClinicSession{
		SlotID:      &slotID,
		TeacherID:   1,
		BranchID:    1,
		SessionType: model.SessionTypeRegular,
		Date:        date,
		StartTime:   model.NewTimeOfDay(10, 0),
		EndTime:     model.NewTimeOfDay(11, 0),
		Capacity:    2,
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	sessions := NewClinicSessionRepository(db)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := db.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, sessions.Create(ctx, regularSession(7, date)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := sessions.ExistsRegular(ctx, 7, date)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithinTx_NestedReusesOuter(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	slots := NewClinicSlotRepository(db)

	err := db.WithinTx(ctx, func(ctx context.Context) error {
		return db.WithinTx(ctx, func(ctx context.Context) error {
			return slots.Create(ctx, &model.ClinicSlot{TeacherID: 1, IsActive: true})
		})
	})
	require.NoError(t, err)

	all, err := slots.GetAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionRepository_RegularUniqueness(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	sessions := NewClinicSessionRepository(db)
	date := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	first := regularSession(3, date)
	require.NoError(t, sessions.Create(ctx, first))
	assert.Equal(t, int64(1), first.Version)
	assert.True(t, first.Date.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))

	err := sessions.Create(ctx, regularSession(3, date))
	assert.ErrorIs(t, err, model.ErrSessionAlreadyExists)

	created, err := sessions.CreateRegularIfAbsent(ctx, regularSession(3, date))
	require.NoError(t, err)
	assert.False(t, created)

	// после отмены слот в эту дату снова свободен
	require.NoError(t, sessions.Cancel(ctx, first.ID, first.Version, date))
	active, err := sessions.GetRegular(ctx, 3, date)
	require.NoError(t, err)
	assert.Nil(t, active)

	exists, err := sessions.ExistsRegular(ctx, 3, date)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSessionRepository_VersionCheck(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	sessions := NewClinicSessionRepository(db)

	s := regularSession(1, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, sessions.Create(ctx, s))

	require.NoError(t, sessions.BumpVersion(ctx, s.ID, 1))
	err := sessions.BumpVersion(ctx, s.ID, 1)
	assert.ErrorIs(t, err, model.ErrConcurrentModification)

	got, err := sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestAttendanceRepository_DeleteCascadesRecord(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	attendances := NewClinicAttendanceRepository(db)
	records := NewClinicRecordRepository(db)

	a := &model.ClinicAttendance{ClinicSessionID: 10, StudentCourseRecordID: 20, CreatedBy: 1}
	require.NoError(t, attendances.Create(ctx, a))
	assert.ErrorIs(t, attendances.Create(ctx, &model.ClinicAttendance{ClinicSessionID: 10, StudentCourseRecordID: 20}),
		model.ErrAttendanceAlreadyExists)

	require.NoError(t, records.Create(ctx, &model.ClinicRecord{ClinicAttendanceID: a.ID, WriterID: 1, Title: "t"}))
	assert.ErrorIs(t, records.Create(ctx, &model.ClinicRecord{ClinicAttendanceID: a.ID}), model.ErrClinicRecordAlreadyExists)

	require.NoError(t, attendances.Delete(ctx, a.ID))
	rec, err := records.GetByAttendanceID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestConcurrentTxAreSerialized(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	sessions := NewClinicSessionRepository(db)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.WithinTx(ctx, func(ctx context.Context) error {
				ok, err := sessions.CreateRegularIfAbsent(ctx, regularSession(5, date))
				if ok {
					mu.Lock()
					created++
					mu.Unlock()
				}
				return err
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
