package repository

import (
	"context"
	"sync"
	"time"

	"optiplan/auth/internal/models"
)

// Memory implements Store on mutex-guarded maps with the same
// uniqueness and cascade semantics as the postgres adapter. It backs
// the test suites and is good enough for local development.
type Memory struct {
	mu            sync.Mutex
	users         map[string]models.User
	usersByEmail  map[string]string
	accounts      map[string]models.Account
	sessions      map[string]models.Session
	sessionsByTok map[string]string
	verifications map[string]models.Verification
	verifsByTok   map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]models.User),
		usersByEmail:  make(map[string]string),
		accounts:      make(map[string]models.Account),
		sessions:      make(map[string]models.Session),
		sessionsByTok: make(map[string]string),
		verifications: make(map[string]models.Verification),
		verifsByTok:   make(map[string]string),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) CreateUser(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByEmail[user.Email]; ok {
		return ErrConflict
	}
	if _, ok := m.users[user.ID]; ok {
		return ErrConflict
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *Memory) UserByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}

	delete(m.users, id)
	delete(m.usersByEmail, user.Email)

	// Cascade, mirroring ON DELETE CASCADE in postgres.
	for accountID, account := range m.accounts {
		if account.UserID == id {
			delete(m.accounts, accountID)
		}
	}
	for sessionID, session := range m.sessions {
		if session.UserID == id {
			delete(m.sessionsByTok, string(session.TokenHash))
			delete(m.sessions, sessionID)
		}
	}
	return nil
}

func (m *Memory) CreateAccount(_ context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; ok {
		return ErrConflict
	}
	if _, ok := m.users[account.UserID]; !ok {
		return ErrNotFound
	}

	account.CreatedAt = time.Now()
	m.accounts[account.ID] = account
	return nil
}

func (m *Memory) AccountByUserAndProvider(_ context.Context, userID string, provider models.ProviderKind) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range m.accounts {
		if account.UserID == userID && account.Provider == provider {
			return account, nil
		}
	}
	return models.Account{}, ErrNotFound
}

func (m *Memory) UpdateAccountPassword(_ context.Context, accountID string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	account.PasswordHash = &passwordHash
	m.accounts[accountID] = account
	return nil
}

func (m *Memory) CreateSession(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessionsByTok[string(session.TokenHash)]; ok {
		return ErrConflict
	}
	if _, ok := m.users[session.UserID]; !ok {
		return ErrNotFound
	}

	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	m.sessionsByTok[string(session.TokenHash)] = session.ID
	return nil
}

func (m *Memory) SessionByTokenHash(_ context.Context, tokenHash []byte) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.sessionsByTok[string(tokenHash)]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return m.sessions[id], nil
}

func (m *Memory) SessionsByUser(_ context.Context, userID string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sessions []models.Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (m *Memory) RenewSession(_ context.Context, id string, prevRenewedAt, renewedAt, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || !session.LastRenewedAt.Equal(prevRenewedAt) {
		return false, nil
	}
	session.LastRenewedAt = renewedAt
	session.ExpiresAt = expiresAt
	m.sessions[id] = session
	return true, nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.sessionsByTok, string(session.TokenHash))
	delete(m.sessions, id)
	return nil
}

func (m *Memory) DeleteSessionsByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessionsByTok, string(session.TokenHash))
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, session := range m.sessions {
		if !session.ExpiresAt.After(now) {
			delete(m.sessionsByTok, string(session.TokenHash))
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) CreateVerification(_ context.Context, verification models.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.verifsByTok[string(verification.TokenHash)]; ok {
		return ErrConflict
	}

	verification.CreatedAt = time.Now()
	m.verifications[verification.ID] = verification
	m.verifsByTok[string(verification.TokenHash)] = verification.ID
	return nil
}

func (m *Memory) VerificationByTokenHash(_ context.Context, tokenHash []byte) (models.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.verifsByTok[string(tokenHash)]
	if !ok {
		return models.Verification{}, ErrNotFound
	}
	return m.verifications[id], nil
}

func (m *Memory) ConsumeVerification(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	verification, ok := m.verifications[id]
	if !ok || verification.Used || !verification.ExpiresAt.After(now) {
		return false, nil
	}
	verification.Used = true
	m.verifications[id] = verification
	return true, nil
}

func (m *Memory) DeleteDeadVerifications(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, verification := range m.verifications {
		if verification.Used || !verification.ExpiresAt.After(now) {
			delete(m.verifsByTok, string(verification.TokenHash))
			delete(m.verifications, id)
			removed++
		}
	}
	return removed, nil
}
