package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayush/pokedex/internal/models"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*models.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, username, email, hashed string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Username == username {
			return nil, models.ErrDuplicateUsername
		}
		if u.Email == email {
			return nil, models.ErrDuplicateEmail
		}
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Username: username, Email: email, Password: hashed, CreatedAt: time.Now()}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeSessions struct {
	mu   sync.Mutex
	n    int
	byID map[string]int64
	err  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]int64{}}
}

func (f *fakeSessions) Create(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.n++
	sid := fmt.Sprintf("sid-%d", f.n)
	f.byID[sid] = userID
	return sid, nil
}

func (f *fakeSessions) Get(_ context.Context, sid string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.byID[sid]
	if !ok {
		return 0, models.ErrUnauthenticated
	}
	return id, nil
}

func (f *fakeSessions) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, sid)
	return nil
}
