package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the repository interfaces. Each has an err field
// that, when set, is returned from every call to simulate a store outage.

type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[string]*model.User
	nextID  int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict(MsgUserExists)
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	stored := *user
	f.byEmail[user.Email] = &stored
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFoundMessage("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

// fakeEventRepo accepts ids of the form "evt-N" as well-formed.
type fakeEventRepo struct {
	events map[string]*model.Event
	order  []string
	nextID int
	err    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*model.Event)}
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, e *model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	e.ID = fmt.Sprintf("evt-%d", f.nextID)
	e.CreatedAt = time.Now()
	stored := *e
	f.events[e.ID] = &stored
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventRepo) ListEventsByOwner(_ context.Context, owner string) ([]model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Event{}
	for _, id := range f.order {
		if e, ok := f.events[id]; ok && e.OwnerEmail == owner {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) UpdateEvent(_ context.Context, id string, patch model.EventPatch) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.events[id]
	if !ok {
		return apperror.NotFoundMessage("Event not found or no changes made")
	}
	patch.Apply(e)
	now := time.Now()
	e.UpdatedAt = &now
	return nil
}

func (f *fakeEventRepo) DeleteEvent(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[id]; !ok {
		return apperror.NotFoundMessage("Event not found")
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) FindDueEvents(_ context.Context, date, tod string) ([]model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Event
	for _, e := range f.events {
		if !e.Triggered && e.Date == date && e.Time == tod {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ValidID(id string) bool {
	return strings.HasPrefix(id, "evt-")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
