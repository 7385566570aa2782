package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/plate-notify/internal/model"
)

// memUsers mimics the Postgres repository, unique email index included.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.User
	err    error
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[int64]model.User{}}
}

func (s *memUsers) Create(_ context.Context, name, email, hash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	for _, u := range s.rows {
		if u.Email == email {
			return 0, model.ErrConflict
		}
	}
	s.nextID++
	s.rows[s.nextID] = model.User{ID: s.nextID, Name: name, Email: email, Password: hash}
	return s.nextID, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	u.Password = ""
	return &u, nil
}

func (s *memUsers) Update(_ context.Context, id int64, name, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.rows[id]; !ok {
		return model.ErrNotFound
	}
	for _, u := range s.rows {
		if u.Email == email && u.ID != id {
			return model.ErrConflict
		}
	}
	s.rows[id] = model.User{ID: id, Name: name, Email: email, Password: hash}
	return nil
}

func (s *memUsers) stored(id int64) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id]
}

type memNotifications struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.Notification
	err    error
}

func (s *memNotifications) Create(_ context.Context, ownerID int64, plate, occurrence string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	s.rows = append(s.rows, model.Notification{
		ID:         s.nextID,
		UserID:     ownerID,
		Plate:      plate,
		Occurrence: occurrence,
		Status:     model.NotificationStatusPending,
		CreatedAt:  time.Now().UTC(),
	})
	return s.nextID, nil
}

func (s *memNotifications) ListByOwner(_ context.Context, ownerID int64) ([]model.Notification, error) {
	return s.filter(func(n model.Notification) bool { return n.UserID == ownerID })
}

func (s *memNotifications) ListNotOwnedBy(_ context.Context, ownerID int64) ([]model.Notification, error) {
	return s.filter(func(n model.Notification) bool { return n.UserID != ownerID })
}

func (s *memNotifications) filter(keep func(model.Notification) bool) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []model.Notification{}
	for _, n := range s.rows {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var errStorageDown = errors.New("storage down")
