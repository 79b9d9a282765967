package state

import (
	"sync"
)

// Manager хранит диалоги пользователей в памяти процесса
type Manager struct {
	mu     sync.RWMutex
	states map[int64]UserData // telegramID -> UserData
}

func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]UserData),
	}
}

// Get возвращает копию состояния пользователя
func (sm *Manager) Get(telegramID int64) UserData {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.states[telegramID]
}

// Set сохраняет состояние, StateNone удаляет его
func (sm *Manager) Set(telegramID int64, data UserData) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data.State == StateNone {
		delete(sm.states, telegramID)
		return
	}
	sm.states[telegramID] = data
}

// Clear завершает диалог. Возвращает false, если диалога не было.
func (sm *Manager) Clear(telegramID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	_, ok := sm.states[telegramID]
	delete(sm.states, telegramID)
	return ok
}
