package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

type ClinicSessionRepository struct {
	db *DB
}

func NewClinicSessionRepository(db *DB) *ClinicSessionRepository {
	return &ClinicSessionRepository{db: db}
}

func (r *ClinicSessionRepository) Create(ctx context.Context, session *model.ClinicSession) error {
	defer r.db.lock(ctx)()

	if r.activeRegular(session) != nil {
		return model.NewError(model.CodeSessionAlreadyExists, "regular session for slot %d on %s already exists",
			*session.SlotID, schedule.FormatDate(session.Date))
	}
	r.insert(session)
	return nil
}

func (r *ClinicSessionRepository) CreateRegularIfAbsent(ctx context.Context, session *model.ClinicSession) (bool, error) {
	defer r.db.lock(ctx)()

	if r.activeRegular(session) != nil {
		return false, nil
	}
	r.insert(session)
	return true, nil
}

func (r *ClinicSessionRepository) insert(session *model.ClinicSession) {
	now := r.db.now()
	session.ID = r.db.nextID()
	session.Date = schedule.DateOf(session.Date)
	session.Version = 1
	session.CreatedAt = now
	session.UpdatedAt = now
	r.db.data.sessions[session.ID] = *session
}

// activeRegular повторяет частичный уникальный индекс uq_clinic_sessions_regular
func (r *ClinicSessionRepository) activeRegular(session *model.ClinicSession) *model.ClinicSession {
	if !session.IsRegular() || session.SlotID == nil || session.IsCanceled {
		return nil
	}
	day := schedule.DateOf(session.Date)
	for _, s := range r.db.data.sessions {
		if s.IsRegular() && !s.IsCanceled && s.SlotID != nil && *s.SlotID == *session.SlotID && s.Date.Equal(day) {
			existing := s
			return &existing
		}
	}
	return nil
}

func (r *ClinicSessionRepository) GetByID(ctx context.Context, id int64) (*model.ClinicSession, error) {
	defer r.db.lock(ctx)()

	session, ok := r.db.data.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *ClinicSessionRepository) GetRegular(ctx context.Context, slotID int64, date time.Time) (*model.ClinicSession, error) {
	defer r.db.lock(ctx)()

	probe := &model.ClinicSession{SlotID: &slotID, SessionType: model.SessionTypeRegular, Date: date}
	return r.activeRegular(probe), nil
}

func (r *ClinicSessionRepository) ExistsRegular(ctx context.Context, slotID int64, date time.Time) (bool, error) {
	defer r.db.lock(ctx)()

	day := schedule.DateOf(date)
	for _, s := range r.db.data.sessions {
		if s.IsRegular() && s.SlotID != nil && *s.SlotID == slotID && s.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ClinicSessionRepository) CountBySlotID(ctx context.Context, slotID int64) (int, error) {
	defer r.db.lock(ctx)()

	count := 0
	for _, s := range r.db.data.sessions {
		if s.SlotID != nil && *s.SlotID == slotID {
			count++
		}
	}
	return count, nil
}

func (r *ClinicSessionRepository) GetByTeacherID(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.ClinicSession, error) {
	defer r.db.lock(ctx)()

	from, to = schedule.DateOf(from), schedule.DateOf(to)
	var sessions []*model.ClinicSession
	for _, s := range r.db.data.sessions {
		if s.TeacherID != teacherID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		session := s
		sessions = append(sessions, &session)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (r *ClinicSessionRepository) GetEnrolledByStudent(ctx context.Context, studentID int64, date time.Time) ([]*model.ClinicSession, error) {
	defer r.db.lock(ctx)()

	day := schedule.DateOf(date)
	var sessions []*model.ClinicSession
	for _, a := range r.db.data.attendances {
		if record, ok := r.db.data.courseRecords[a.StudentCourseRecordID]; !ok || record.StudentID != studentID {
			continue
		}
		s, ok := r.db.data.sessions[a.ClinicSessionID]
		if !ok || s.IsCanceled || !s.Date.Equal(day) {
			continue
		}
		session := s
		sessions = append(sessions, &session)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (r *ClinicSessionRepository) BumpVersion(ctx context.Context, id, expected int64) error {
	defer r.db.lock(ctx)()

	s, err := r.checkVersion(id, expected)
	if err != nil {
		return err
	}
	s.Version++
	s.UpdatedAt = r.db.now()
	r.db.data.sessions[id] = s
	return nil
}

func (r *ClinicSessionRepository) Cancel(ctx context.Context, id, expected int64, at time.Time) error {
	defer r.db.lock(ctx)()

	s, err := r.checkVersion(id, expected)
	if err != nil {
		return err
	}
	s.IsCanceled = true
	s.CanceledAt = &at
	s.Version++
	s.UpdatedAt = r.db.now()
	r.db.data.sessions[id] = s
	return nil
}

func (r *ClinicSessionRepository) checkVersion(id, expected int64) (model.ClinicSession, error) {
	s, ok := r.db.data.sessions[id]
	if !ok {
		return s, fmt.Errorf("clinic session %d: not found", id)
	}
	if s.Version != expected {
		return s, model.NewError(model.CodeConcurrentModification,
			"session %d version is %d, expected %d", id, s.Version, expected)
	}
	return s, nil
}

func sortSessions(sessions []*model.ClinicSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		if sessions[i].StartTime != sessions[j].StartTime {
			return sessions[i].StartTime < sessions[j].StartTime
		}
		return sessions[i].ID < sessions[j].ID
	})
}
