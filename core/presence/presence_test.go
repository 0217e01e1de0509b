package presence

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/codestock/core/user"
)

type fakeRepo struct {
	entries map[int]Entry
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[int]Entry)}
}

func (r *fakeRepo) UpsertEntry(userID int, page string, now time.Time) (Entry, error) {
	e, ok := r.entries[userID]
	if !ok {
		e = Entry{ID: uuid.NewString(), UserID: userID}
	}
	e.LastActive = now
	if page != "" {
		e.CurrentPage = page
	}
	r.entries[userID] = e
	return e, nil
}

func (r *fakeRepo) QueryEntriesSince(cutoff time.Time) ([]Entry, error) {
	var entries []Entry
	for _, e := range r.entries {
		if !e.LastActive.Before(cutoff) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type fakeDirectory struct {
	users map[int]user.User
}

func (d *fakeDirectory) GetByID(id int) (user.User, error) {
	if usr, ok := d.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

type captureLogger struct {
	errorCount int
}

func (l *captureLogger) Enable(bool)                        {}
func (l *captureLogger) Debug(string, ...interface{})       {}
func (l *captureLogger) Info(string, ...interface{})        {}
func (l *captureLogger) Warn(string, ...interface{})        {}
func (l *captureLogger) Error(string, ...interface{})       { l.errorCount++ }
func (l *captureLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

func TestService_Heartbeat(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	now := time.Now().UTC()
	nowFunc = func() time.Time { return now }

	repo := newFakeRepo()
	dir := &fakeDirectory{users: map[int]user.User{1: {ID: 1, Username: "alice"}}}
	svc := NewService(repo, dir, &captureLogger{})

	e1, err := svc.Heartbeat(1, "/dashboard")
	if err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	if e1.CurrentPage != "/dashboard" {
		t.Errorf("Heartbeat() page = %q; want /dashboard", e1.CurrentPage)
	}
	if !e1.LastActive.Equal(now) {
		t.Errorf("Heartbeat() lastActive = %v; want %v", e1.LastActive, now)
	}

	// a later heartbeat without a page keeps the recorded one
	later := now.Add(time.Minute)
	nowFunc = func() time.Time { return later }
	e2, err := svc.Heartbeat(1, "")
	if err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	if e2.ID != e1.ID {
		t.Error("Heartbeat() created a second entry for the same user")
	}
	if e2.CurrentPage != "/dashboard" {
		t.Errorf("Heartbeat() empty page overwrote the recorded page; got %q", e2.CurrentPage)
	}
	if !e2.LastActive.Equal(later) {
		t.Errorf("Heartbeat() lastActive = %v; want %v", e2.LastActive, later)
	}
	if len(repo.entries) != 1 {
		t.Errorf("repo holds %d entries; want 1", len(repo.entries))
	}
}

func TestService_ListActive(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	now := time.Now().UTC()
	threshold := 5 * time.Minute

	repo := newFakeRepo()
	dir := &fakeDirectory{users: map[int]user.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
		3: {ID: 3, Username: "carol"},
	}}
	svc := NewService(repo, dir, &captureLogger{})

	beat := func(userID int, at time.Time, page string) {
		nowFunc = func() time.Time { return at }
		if _, err := svc.Heartbeat(userID, page); err != nil {
			t.Fatalf("Heartbeat() error = %v", err)
		}
	}

	beat(1, now, "/dashboard")
	beat(2, now.Add(-threshold), "/awards") // exactly on the boundary
	beat(3, now.Add(-threshold-time.Second), "/materials")

	nowFunc = func() time.Time { return now }
	active, err := svc.ListActive(threshold)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("ListActive() returned %d entries; want 2 (boundary is inclusive)", len(active))
	}

	got := make(map[int]ActiveEntry, len(active))
	for _, e := range active {
		got[e.UserID] = e
	}
	if _, ok := got[3]; ok {
		t.Error("ListActive() included an entry older than the threshold")
	}
	if e, ok := got[2]; !ok {
		t.Error("ListActive() excluded the entry aged exactly threshold")
	} else if e.User.Username != "bob" {
		t.Errorf("ListActive() joined user = %q; want bob", e.User.Username)
	}
	if got[1].CurrentPage != "/dashboard" {
		t.Errorf("ListActive() page = %q; want /dashboard", got[1].CurrentPage)
	}
}

func TestService_ListActive_unknownUser(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	now := time.Now().UTC()
	nowFunc = func() time.Time { return now }

	repo := newFakeRepo()
	dir := &fakeDirectory{users: map[int]user.User{1: {ID: 1, Username: "alice"}}}
	logger := &captureLogger{}
	svc := NewService(repo, dir, logger)

	if _, err := svc.Heartbeat(1, "/dashboard"); err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	if _, err := svc.Heartbeat(99, "/ghost"); err != nil { // no such user
		t.Fatalf("Heartbeat() error = %v", err)
	}

	active, err := svc.ListActive(5 * time.Minute)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("ListActive() returned %d entries; want 1", len(active))
	}
	if active[0].UserID != 1 {
		t.Errorf("ListActive() userID = %d; want 1", active[0].UserID)
	}
	if logger.errorCount != 1 {
		t.Errorf("ListActive() logged %d errors; want 1", logger.errorCount)
	}
}
