// Package memory хранит данные клиники в памяти процесса.
// Используется в тестах и при STORAGE=memory для локального запуска без PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type pairKey [2]int64

type tables struct {
	slots                map[int64]model.ClinicSlot
	sessions             map[int64]model.ClinicSession
	attendances          map[int64]model.ClinicAttendance
	records              map[int64]model.ClinicRecord
	courseRecords        map[int64]model.StudentCourseRecord
	branchAssignments    map[pairKey]model.TeacherBranchAssignment
	assistantAssignments map[pairKey]model.TeacherAssistantAssignment
	users                map[int64]model.User
}

func newTables() tables {
	return tables{
		slots:                make(map[int64]model.ClinicSlot),
		sessions:             make(map[int64]model.ClinicSession),
		attendances:          make(map[int64]model.ClinicAttendance),
		records:              make(map[int64]model.ClinicRecord),
		courseRecords:        make(map[int64]model.StudentCourseRecord),
		branchAssignments:    make(map[pairKey]model.TeacherBranchAssignment),
		assistantAssignments: make(map[pairKey]model.TeacherAssistantAssignment),
		users:                make(map[int64]model.User),
	}
}

// clone копирует таблицы. Значения хранятся по значению, указатели внутри
// (SlotID, CreatorID, DefaultClinicSlotID) после записи не меняются.
func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.slots {
		c.slots[k] = v
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	for k, v := range t.attendances {
		c.attendances[k] = v
	}
	for k, v := range t.records {
		c.records[k] = v
	}
	for k, v := range t.courseRecords {
		c.courseRecords[k] = v
	}
	for k, v := range t.branchAssignments {
		c.branchAssignments[k] = v
	}
	for k, v := range t.assistantAssignments {
		c.assistantAssignments[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	return c
}

// DB общее хранилище всех in-memory репозиториев.
//
// Транзакции сериализуются: WithinTx берёт txMu на запись, одиночные операции
// вне транзакции берут его на чтение. При ошибке fn таблицы откатываются к снимку.
type DB struct {
	txMu sync.RWMutex
	mu   sync.Mutex
	seq  int64
	data tables
	now  func() time.Time
}

func NewDB() *DB {
	return &DB{
		data: newTables(),
		now:  time.Now,
	}
}

// SetNowFunc подменяет часы для created_at/updated_at
func (db *DB) SetNowFunc(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// WithinTx выполняет fn атомарно относительно остальных операций хранилища
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.data.clone()
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.data = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

// lock захватывает хранилище для одной операции и возвращает функцию освобождения
func (db *DB) lock(ctx context.Context) func() {
	outside := !inTx(ctx)
	if outside {
		db.txMu.RLock()
	}
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		if outside {
			db.txMu.RUnlock()
		}
	}
}

func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

// PutCourseRecord добавляет запись курса студента (данные внешнего модуля)
func (db *DB) PutCourseRecord(record model.StudentCourseRecord) {
	defer db.lock(context.Background())()
	if record.ID == 0 {
		record.ID = db.nextID()
	} else if record.ID > db.seq {
		db.seq = record.ID
	}
	db.data.courseRecords[record.ID] = record
}

// PutTeacherBranch добавляет назначение учителя в филиал
func (db *DB) PutTeacherBranch(a model.TeacherBranchAssignment) {
	defer db.lock(context.Background())()
	db.data.branchAssignments[pairKey{a.TeacherID, a.BranchID}] = a
}

// PutTeacherAssistant добавляет закрепление ассистента
func (db *DB) PutTeacherAssistant(a model.TeacherAssistantAssignment) {
	defer db.lock(context.Background())()
	db.data.assistantAssignments[pairKey{a.TeacherID, a.AssistantID}] = a
}
