package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/internal/domain/entity"
	repo "github.com/venuepass/venuepass/internal/domain/repository"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// In-memory fakes of the repository interfaces. The registration fake keeps
// the same locked capacity/duplicate gate as the Postgres implementation so
// concurrency properties can be exercised in tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("user-%d", f.seq)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

type fakeVenueRepo struct {
	mu      sync.Mutex
	seq     int
	venues  map[string]*entity.Venue
	listErr error
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{venues: map[string]*entity.Venue{}}
}

func (f *fakeVenueRepo) Create(_ context.Context, v *entity.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == "" {
		f.seq++
		v.ID = fmt.Sprintf("venue-%d", f.seq)
	}
	cp := *v
	f.venues[v.ID] = &cp
	return nil
}

func (f *fakeVenueRepo) Update(_ context.Context, v *entity.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.venues[v.ID]; !ok {
		return apperr.New(apperr.NotFound, "venue not found")
	}
	cp := *v
	f.venues[v.ID] = &cp
	return nil
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id string) (*entity.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "venue not found")
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVenueRepo) List(_ context.Context) ([]entity.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.Venue, 0, len(f.venues))
	for _, v := range f.venues {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVenueRepo) ListByIDs(_ context.Context, ids []string) ([]entity.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Venue, 0, len(ids))
	for _, id := range ids {
		if v, ok := f.venues[id]; ok {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeEventRepo struct {
	mu      sync.Mutex
	seq     int
	events  map[string]*entity.Event
	listErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*entity.Event{}}
}

func (f *fakeEventRepo) Create(_ context.Context, e *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		f.seq++
		e.ID = fmt.Sprintf("event-%d", f.seq)
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Update(_ context.Context, e *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return apperr.New(apperr.NotFound, "event not found")
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "event not found")
	}
	return e, nil
}

func (f *fakeEventRepo) List(_ context.Context) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListByUser(_ context.Context, userID string) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []entity.Event
	for _, e := range f.events {
		if e.IsRegistered(userID) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.StartsAt == nil && b.StartsAt == nil:
			return a.ID < b.ID
		case a.StartsAt == nil:
			return false
		case b.StartsAt == nil:
			return true
		case a.StartsAt.Equal(*b.StartsAt):
			return a.ID < b.ID
		default:
			return a.StartsAt.Before(*b.StartsAt)
		}
	})
	return out, nil
}

func (f *fakeEventRepo) ListOnDay(_ context.Context, day time.Time) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []entity.Event
	for _, e := range f.events {
		if e.Day().Equal(entity.NormalizeDay(day)) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type regKey struct{ userID, eventID string }

type fakeRegistrationRepo struct {
	mu            sync.Mutex
	events        *fakeEventRepo
	rows          map[regKey]entity.Registration
	unregisterErr map[string]error // eventID -> forced failure
	userLocks     sync.Map         // userID -> *sync.Mutex
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		events:        events,
		rows:          map[regKey]entity.Registration{},
		unregisterErr: map[string]error{},
	}
}

func (f *fakeRegistrationRepo) Register(_ context.Context, eventID, userID string) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "event not found")
	}
	if e.IsRegistered(userID) {
		return nil, apperr.New(apperr.AlreadyRegistered, "you are already registered for event %q", e.Name)
	}
	if e.IsFull() {
		return nil, apperr.New(apperr.CapacityExceeded, "event %q is full", e.Name)
	}
	e.Registered = append(e.Registered, userID)
	f.rows[regKey{userID, eventID}] = entity.Registration{UserID: userID, EventID: eventID}
	cp := *e
	return &cp, nil
}

func (f *fakeRegistrationRepo) Unregister(_ context.Context, eventID, userID string) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.unregisterErr[eventID]; err != nil {
		return nil, err
	}
	e, ok := f.events.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "event not found")
	}
	if !e.IsRegistered(userID) {
		return nil, apperr.New(apperr.NotRegistered, "user is not registered for event %q", e.Name)
	}
	e.Registered = remove(e.Registered, userID)
	e.Attendees = remove(e.Attendees, userID)
	delete(f.rows, regKey{userID, eventID})
	cp := *e
	return &cp, nil
}

func (f *fakeRegistrationRepo) AdminUpsert(_ context.Context, eventID, userID string) (*entity.Event, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events.events[eventID]
	if !ok {
		return nil, false, apperr.New(apperr.NotFound, "event not found")
	}
	removed := e.HasAttendee(userID)
	e.Attendees = remove(e.Attendees, userID)
	if !e.IsRegistered(userID) {
		e.Registered = append(e.Registered, userID)
	}
	f.rows[regKey{userID, eventID}] = entity.Registration{UserID: userID, EventID: eventID}
	cp := *e
	return &cp, removed, nil
}

func (f *fakeRegistrationRepo) ListByUser(_ context.Context, userID string) ([]entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Registration
	for k, r := range f.rows {
		if k.userID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (f *fakeRegistrationRepo) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	v, _ := f.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

func (f *fakeRegistrationRepo) Reconcile(_ context.Context) ([]repo.Discrepancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repo.Discrepancy
	for _, e := range f.events.events {
		for _, uid := range e.Registered {
			if _, ok := f.rows[regKey{uid, e.ID}]; !ok {
				out = append(out, repo.Discrepancy{EventID: e.ID, UserID: uid, Problem: "missing_join_row"})
			}
		}
	}
	for k := range f.rows {
		e, ok := f.events.events[k.eventID]
		if !ok || !e.IsRegistered(k.userID) {
			out = append(out, repo.Discrepancy{EventID: k.eventID, UserID: k.userID, Problem: "orphan_join_row"})
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) hasRow(userID, eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[regKey{userID, eventID}]
	return ok
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type dayKey struct {
	userID string
	day    time.Time
}

type fakeLocationRepo struct {
	mu          sync.Mutex
	seq         int
	assignments map[dayKey]*entity.LocationAssignment
	logs        []entity.LocationLog
	logErr      error
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{assignments: map[dayKey]*entity.LocationAssignment{}}
}

func (f *fakeLocationRepo) GetForDay(_ context.Context, userID string, day time.Time) (*entity.LocationAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[dayKey{userID, day}]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "no location assignment for this day")
	}
	cp := *a
	cp.History = append([]entity.LocationChange(nil), a.History...)
	return &cp, nil
}

func (f *fakeLocationRepo) Insert(_ context.Context, a *entity.LocationAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey{a.UserID, a.Day}
	if _, ok := f.assignments[k]; ok {
		return repo.ErrDuplicateDay
	}
	f.seq++
	a.ID = fmt.Sprintf("assignment-%d", f.seq)
	cp := *a
	cp.History = append([]entity.LocationChange(nil), a.History...)
	f.assignments[k] = &cp
	return nil
}

func (f *fakeLocationRepo) Update(_ context.Context, a *entity.LocationAssignment, prevVenueID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey{a.UserID, a.Day}
	stored, ok := f.assignments[k]
	if !ok || stored.VenueID != prevVenueID {
		return repo.ErrStaleAssignment
	}
	cp := *a
	cp.History = append([]entity.LocationChange(nil), a.History...)
	f.assignments[k] = &cp
	return nil
}

func (f *fakeLocationRepo) ListByUser(_ context.Context, userID string) ([]entity.LocationAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.LocationAssignment
	for k, a := range f.assignments {
		if k.userID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

func (f *fakeLocationRepo) AppendLog(_ context.Context, l *entity.LocationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, *l)
	return nil
}

type fakeHostRepo struct {
	mu    sync.Mutex
	seq   int
	hosts map[string]*entity.Host
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{hosts: map[string]*entity.Host{}}
}

func (f *fakeHostRepo) Create(_ context.Context, h *entity.Host) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID == "" {
		f.seq++
		h.ID = fmt.Sprintf("host-%d", f.seq)
	}
	cp := *h
	cp.Members = append([]string(nil), h.Members...)
	f.hosts[h.ID] = &cp
	return nil
}

func (f *fakeHostRepo) Update(_ context.Context, h *entity.Host) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hosts[h.ID]; !ok {
		return apperr.New(apperr.NotFound, "host not found")
	}
	cp := *h
	cp.Members = append([]string(nil), h.Members...)
	f.hosts[h.ID] = &cp
	return nil
}

func (f *fakeHostRepo) GetByID(_ context.Context, id string) (*entity.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hosts[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "host not found")
	}
	cp := *h
	cp.Members = append([]string(nil), h.Members...)
	return &cp, nil
}

func (f *fakeHostRepo) List(_ context.Context) ([]entity.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Host, 0, len(f.hosts))
	for _, h := range f.hosts {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

// Interface checks.
var (
	_ repo.UserRepository         = (*fakeUserRepo)(nil)
	_ repo.VenueRepository        = (*fakeVenueRepo)(nil)
	_ repo.EventRepository        = (*fakeEventRepo)(nil)
	_ repo.RegistrationRepository = (*fakeRegistrationRepo)(nil)
	_ repo.LocationRepository     = (*fakeLocationRepo)(nil)
	_ repo.HostRepository         = (*fakeHostRepo)(nil)
)
