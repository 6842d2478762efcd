package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/repository"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

type auditRecorderStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (a *auditRecorderStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return a.err
}

func (a *auditRecorderStub) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

// memoryCache is a CacheRepository that round-trips values as JSON.
type memoryCache struct {
	mu          sync.Mutex
	items       map[string][]byte
	getErr      error
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

type accountStoreStub struct {
	byID       map[string]*models.Account
	findErr    error
	updateErr  error
	created    []*models.Account
	lastChange *models.StatusChange
	lastPatch  models.ProfilePatch
}

func newAccountStore(accounts ...*models.Account) *accountStoreStub {
	s := &accountStoreStub{byID: map[string]*models.Account{}}
	for _, a := range accounts {
		s.byID[a.ID] = a
	}
	return s
}

func (s *accountStoreStub) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (s *accountStoreStub) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, a := range s.byID {
		if strings.EqualFold(a.Email, email) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *accountStoreStub) List(ctx context.Context) ([]models.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]models.Account, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (s *accountStoreStub) Create(ctx context.Context, account *models.Account) error {
	account.ID = "acc-" + account.Email
	account.Version = 1
	s.created = append(s.created, account)
	clone := *account
	s.byID[account.ID] = &clone
	return nil
}

func (s *accountStoreStub) write(id string, version int, apply func(a *models.Account)) (*models.Account, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	a, ok := s.byID[id]
	if !ok || a.Version != version {
		return nil, repository.ErrVersionConflict
	}
	apply(a)
	a.Version++
	clone := *a
	return &clone, nil
}

func (s *accountStoreStub) UpdateProfile(ctx context.Context, id string, version int, patch models.ProfilePatch) (*models.Account, error) {
	s.lastPatch = patch
	return s.write(id, version, func(a *models.Account) {
		if v, ok := patch[models.ProfileFieldName]; ok {
			a.Name = v
		}
		if v, ok := patch[models.ProfileFieldRestaurantName]; ok {
			a.RestaurantName = v
		}
	})
}

func (s *accountStoreStub) UpdateStatus(ctx context.Context, id string, version int, change models.StatusChange) (*models.Account, error) {
	s.lastChange = &change
	return s.write(id, version, func(a *models.Account) {
		a.Status = change.Status
		a.ApprovedAt = change.ApprovedAt
		a.ApprovedBy = change.ApprovedBy
	})
}

func (s *accountStoreStub) UpdateRole(ctx context.Context, id string, version int, role models.AccountRole) (*models.Account, error) {
	return s.write(id, version, func(a *models.Account) { a.Role = role })
}

var errStoreDown = errors.New("store down")

func approvedOperator(id string) *models.Account {
	return &models.Account{ID: id, Email: id + "@example.com", Role: models.RoleOperator, Status: models.StatusApproved, Version: 1}
}

func adminAccount() *models.Account {
	return &models.Account{ID: "admin-1", Email: "admin@meatsafe.com", Role: models.RoleAdmin, Status: models.StatusApproved, Version: 1}
}

func errorStatus(err error) int {
	return appErrors.FromError(err).Status
}
