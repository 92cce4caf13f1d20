package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/repository"
)

// memDB is an in-memory stand-in for Postgres. fakeTx restores a snapshot
// when the transaction function fails, which is enough to observe atomicity.
type memDB struct {
	mu         sync.Mutex
	seq        int
	candidates map[string]domain.Candidate
	history    []domain.StageHistoryEntry
	feedbacks  map[string]domain.Feedback
	notes      map[string]domain.Note
	tasks      map[string]domain.Task
	users      map[string]domain.User
	tokens     map[string]domain.RefreshToken

	failHistoryCreate error
	txCount           int
}

func newMemDB() *memDB {
	return &memDB{
		candidates: map[string]domain.Candidate{},
		feedbacks:  map[string]domain.Feedback{},
		notes:      map[string]domain.Note{},
		tasks:      map[string]domain.Task{},
		users:      map[string]domain.User{},
		tokens:     map[string]domain.RefreshToken{},
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%04d", prefix, db.seq)
}

type memSnapshot struct {
	candidates map[string]domain.Candidate
	history    []domain.StageHistoryEntry
	feedbacks  map[string]domain.Feedback
	notes      map[string]domain.Note
	tasks      map[string]domain.Task
	users      map[string]domain.User
	tokens     map[string]domain.RefreshToken
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		candidates: cloneMap(db.candidates),
		history:    slices.Clone(db.history),
		feedbacks:  cloneMap(db.feedbacks),
		notes:      cloneMap(db.notes),
		tasks:      cloneMap(db.tasks),
		users:      cloneMap(db.users),
		tokens:     cloneMap(db.tokens),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.candidates = s.candidates
	db.history = s.history
	db.feedbacks = s.feedbacks
	db.notes = s.notes
	db.tasks = s.tasks
	db.users = s.users
	db.tokens = s.tokens
}

func (db *memDB) historyFor(candidateID string) []domain.StageHistoryEntry {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []domain.StageHistoryEntry
	for _, e := range db.history {
		if e.CandidateID == candidateID {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) candidate(id string) domain.Candidate {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.candidates[id]
}

type fakeTx struct {
	db *memDB
}

func (t fakeTx) WithinReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.mu.Lock()
	t.db.txCount++
	t.db.mu.Unlock()

	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

func (t fakeTx) WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Candidates

type fakeCandidates struct{ db *memDB }

func (f fakeCandidates) Create(_ context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.candidates {
		if strings.EqualFold(existing.Email, c.Email) {
			return nil, fmt.Errorf("create candidate: %w", domain.ErrEmailTaken)
		}
	}
	c.ID = f.db.nextID("cand")
	c.CreatedAt = c.StageEnteredAt
	c.UpdatedAt = c.StageEnteredAt
	if c.Skills == nil {
		c.Skills = []string{}
	}
	f.db.candidates[c.ID] = *c
	out := *c
	return &out, nil
}

func (f fakeCandidates) GetByID(_ context.Context, id string) (*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	return &c, nil
}

func (f fakeCandidates) GetByIDForUpdate(ctx context.Context, id string) (*domain.Candidate, error) {
	return f.GetByID(ctx, id)
}

func (f fakeCandidates) UpdateStage(_ context.Context, id string, oldStage, newStage domain.Stage, enteredAt time.Time) (*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.candidates[id]
	if !ok || c.Stage != oldStage {
		return nil, domain.ErrStageChanged
	}
	c.Stage = newStage
	c.StageEnteredAt = enteredAt
	c.UpdatedAt = enteredAt
	f.db.candidates[id] = c
	return &c, nil
}

func (f fakeCandidates) UpdateFields(_ context.Context, id string, fields domain.CandidateFields) (*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	if fields.Name != nil {
		c.Name = *fields.Name
	}
	if fields.Email != nil {
		c.Email = *fields.Email
	}
	if fields.Phone != nil {
		c.Phone = fields.Phone
	}
	if fields.Position != nil {
		c.Position = *fields.Position
	}
	if fields.Experience != nil {
		c.Experience = fields.Experience
	}
	if fields.Skills != nil {
		c.Skills = fields.Skills
	}
	f.db.candidates[id] = c
	return &c, nil
}

func (f fakeCandidates) SetResume(_ context.Context, id, url string, text *string) (*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	c.ResumeURL = &url
	c.ResumeText = text
	f.db.candidates[id] = c
	return &c, nil
}

func (f fakeCandidates) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.candidates[id]; !ok {
		return domain.ErrCandidateNotFound
	}
	delete(f.db.candidates, id)
	kept := f.db.history[:0]
	for _, e := range f.db.history {
		if e.CandidateID != id {
			kept = append(kept, e)
		}
	}
	f.db.history = kept
	return nil
}

func (f fakeCandidates) sorted() []*domain.Candidate {
	out := make([]*domain.Candidate, 0, len(f.db.candidates))
	for _, c := range f.db.candidates {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f fakeCandidates) List(_ context.Context, filter domain.CandidateFilter) ([]*domain.Candidate, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var matched []*domain.Candidate
	for _, c := range f.sorted() {
		if filter.Stage != nil && c.Stage != *filter.Stage {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Name+" "+c.Email+" "+c.Position), q) && !slices.Contains(c.Skills, filter.Search) {
				continue
			}
		}
		if filter.Position != "" && !strings.Contains(strings.ToLower(c.Position), strings.ToLower(filter.Position)) {
			continue
		}
		if len(filter.Skills) > 0 && !slices.ContainsFunc(filter.Skills, func(s string) bool { return slices.Contains(c.Skills, s) }) {
			continue
		}
		matched = append(matched, c)
	}
	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (f fakeCandidates) CountByStage(_ context.Context) ([]domain.StageCount, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	counts := make([]domain.StageCount, len(domain.Stages))
	for i, s := range domain.Stages {
		counts[i].Stage = s
		for _, c := range f.db.candidates {
			if c.Stage == s {
				counts[i].Count++
			}
		}
	}
	return counts, len(f.db.candidates), nil
}

func (f fakeCandidates) RecentlyUpdated(_ context.Context, limit int) ([]*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	all := f.sorted()
	return all[:min(limit, len(all))], nil
}

func (f fakeCandidates) ListStuck(_ context.Context, cutoff time.Time) ([]*domain.Candidate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*domain.Candidate
	for _, c := range f.sorted() {
		if c.StageEnteredAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

// History

type fakeHistory struct{ db *memDB }

func (f fakeHistory) Create(_ context.Context, e *domain.StageHistoryEntry) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failHistoryCreate != nil {
		return f.db.failHistoryCreate
	}
	e.ID = f.db.nextID("hist")
	f.db.history = append(f.db.history, *e)
	return nil
}

func (f fakeHistory) ListByCandidate(_ context.Context, candidateID string) ([]*domain.StageHistoryEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*domain.StageHistoryEntry{}
	for i := len(f.db.history) - 1; i >= 0; i-- {
		if e := f.db.history[i]; e.CandidateID == candidateID {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (f fakeHistory) CountTransitions(_ context.Context) ([]domain.TransitionCount, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	type key struct {
		from domain.Stage
		to   domain.Stage
	}
	counts := map[key]int{}
	for _, e := range f.db.history {
		k := key{to: e.ToStage}
		if e.FromStage != nil {
			k.from = *e.FromStage
		}
		counts[k]++
	}
	out := []domain.TransitionCount{}
	for k, n := range counts {
		tc := domain.TransitionCount{To: k.to, Count: n}
		if k.from != "" {
			tc.From = stagePtr(k.from)
		}
		out = append(out, tc)
	}
	return out, nil
}

// Feedback and notes

type fakeFeedbacks struct{ db *memDB }

func (f fakeFeedbacks) Create(_ context.Context, fb *domain.Feedback) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fb.ID = f.db.nextID("fb")
	fb.UserName = f.db.users[fb.UserID].Name
	f.db.feedbacks[fb.ID] = *fb
	return nil
}

func (f fakeFeedbacks) GetByID(_ context.Context, id string) (*domain.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fb, ok := f.db.feedbacks[id]
	if !ok {
		return nil, domain.ErrFeedbackNotFound
	}
	return &fb, nil
}

func (f fakeFeedbacks) ListByCandidate(_ context.Context, candidateID string, limit int) ([]*domain.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*domain.Feedback{}
	for _, fb := range f.db.feedbacks {
		if fb.CandidateID == candidateID {
			out = append(out, &fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeFeedbacks) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.feedbacks[id]; !ok {
		return domain.ErrFeedbackNotFound
	}
	delete(f.db.feedbacks, id)
	return nil
}

type fakeNotes struct{ db *memDB }

func (f fakeNotes) Create(_ context.Context, n *domain.Note) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n.ID = f.db.nextID("note")
	n.UserName = f.db.users[n.UserID].Name
	f.db.notes[n.ID] = *n
	return nil
}

func (f fakeNotes) GetByID(_ context.Context, id string) (*domain.Note, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n, ok := f.db.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	return &n, nil
}

func (f fakeNotes) ListByCandidate(_ context.Context, candidateID string, limit int) ([]*domain.Note, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*domain.Note{}
	for _, n := range f.db.notes {
		if n.CandidateID == candidateID {
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeNotes) UpdateContent(_ context.Context, id, content string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n, ok := f.db.notes[id]
	if !ok {
		return domain.ErrNoteNotFound
	}
	n.Content = content
	f.db.notes[id] = n
	return nil
}

func (f fakeNotes) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(f.db.notes, id)
	return nil
}

// Tasks

type fakeTasks struct{ db *memDB }

func (f fakeTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (f fakeTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	t.ID = f.db.nextID("task")
	f.db.tasks[t.ID] = *t
	out := *t
	return &out, nil
}

func (f fakeTasks) Update(_ context.Context, id string, u repository.TaskUpdate) (*domain.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	f.db.tasks[id] = t
	return &t, nil
}

func (f fakeTasks) ToggleStatus(_ context.Context, id string) (*domain.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t.Status = t.Status.Next()
	f.db.tasks[id] = t
	return &t, nil
}

func (f fakeTasks) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(f.db.tasks, id)
	return nil
}

func (f fakeTasks) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*domain.Task
	for _, t := range f.db.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := min((filter.Page-1)*filter.Limit, total)
	return out[start:min(start+filter.Limit, total)], total, nil
}

func (f fakeTasks) Recent(ctx context.Context, ownerID string, limit int) ([]*domain.Task, error) {
	tasks, _, err := f.List(ctx, domain.TaskFilter{OwnerID: ownerID, Page: 1, Limit: limit})
	return tasks, err
}

func (f fakeTasks) Stats(_ context.Context, ownerID string) (domain.TaskStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var s domain.TaskStats
	for _, t := range f.db.tasks {
		if t.OwnerID == ownerID {
			s.Adjust(t.Status, 1)
		}
	}
	return s, nil
}

// Users

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range f.db.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", domain.ErrEmailTaken)
		}
	}
	u.ID = f.db.nextID("user")
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f fakeUsers) CreateRefreshToken(_ context.Context, t *domain.RefreshToken) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t.ID = f.db.nextID("rt")
	f.db.tokens[t.Token] = *t
	return nil
}

func (f fakeUsers) GetRefreshToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &t, nil
}

func (f fakeUsers) DeleteRefreshToken(_ context.Context, token string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.tokens, token)
	return nil
}

func (f fakeUsers) DeleteExpiredRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for k, t := range f.db.tokens {
		if t.IsExpiredAt(now) {
			delete(f.db.tokens, k)
			n++
		}
	}
	return n, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
