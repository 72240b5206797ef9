package state

import (
	"sync"
	"time"
)

// Manager хранит диалоги пользователей в памяти
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
	now    func() time.Time
}

func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		states: make(map[int64]*UserData),
		now:    now,
	}
}

// GetState возвращает шаг диалога; устаревший диалог считается завершённым
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, ok := sm.live(telegramID); ok {
		return userData.State
	}
	return StateNone
}

// Start начинает новый диалог, старые данные отбрасываются
func (sm *Manager) Start(telegramID int64, state UserState, data map[string]any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data == nil {
		data = make(map[string]any)
	}
	sm.states[telegramID] = &UserData{State: state, Data: data, UpdatedAt: sm.now()}
}

// GetData получает временные данные пользователя
func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, ok := sm.live(telegramID); ok {
		value, found := userData.Data[key]
		return value, found
	}
	return nil, false
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Sweep удаляет устаревшие диалоги, возвращает число удалённых
func (sm *Manager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id, userData := range sm.states {
		if sm.now().Sub(userData.UpdatedAt) > DialogTTL {
			delete(sm.states, id)
			removed++
		}
	}
	return removed
}

// live вызывается под блокировкой
func (sm *Manager) live(telegramID int64) (*UserData, bool) {
	userData, exists := sm.states[telegramID]
	if !exists || sm.now().Sub(userData.UpdatedAt) > DialogTTL {
		return nil, false
	}
	return userData, true
}
