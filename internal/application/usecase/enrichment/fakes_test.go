package enrichment

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

// callLog records the order pipeline dependencies are hit in.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeTalentRepo struct {
	mu       sync.Mutex
	log      *callLog
	byUser   map[uuid.UUID]*talent.Profile
	written  map[uuid.UUID]pgvector.Vector
	writeErr error
}

func newFakeTalentRepo(log *callLog, profiles ...*talent.Profile) *fakeTalentRepo {
	r := &fakeTalentRepo{log: log, byUser: map[uuid.UUID]*talent.Profile{}, written: map[uuid.UUID]pgvector.Vector{}}
	for _, p := range profiles {
		r.byUser[p.UserID] = p
	}
	return r
}

func (r *fakeTalentRepo) Save(ctx context.Context, p *talent.Profile) error   { return nil }
func (r *fakeTalentRepo) Update(ctx context.Context, p *talent.Profile) error { return nil }

func (r *fakeTalentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*talent.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return nil, apperror.NewNotFound("talent profile", userID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeTalentRepo) FindByID(ctx context.Context, id uuid.UUID) (*talent.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byUser {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("talent profile", id.String())
}

func (r *fakeTalentRepo) UpdateEmbedding(ctx context.Context, profileID uuid.UUID, vec pgvector.Vector) error {
	if r.log != nil {
		r.log.add("persist")
	}
	if r.writeErr != nil {
		return r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byUser {
		if p.ID == profileID {
			v := vec
			p.Embedding = &v
			r.written[profileID] = vec
			return nil
		}
	}
	return apperror.NewNotFound("talent profile", profileID.String())
}

func (r *fakeTalentRepo) Search(ctx context.Context, params talent.SearchParams) ([]*talent.Profile, error) {
	return nil, nil
}

func (r *fakeTalentRepo) ListUnenriched(ctx context.Context, limit int) ([]*talent.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*talent.Profile
	for _, p := range r.byUser {
		if !p.HasEmbedding() && p.HasResume() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTalentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*talent.Profile, error) {
	return nil, nil
}

type fakeStorage struct {
	log   *callLog
	data  []byte
	errs  []error
	calls int
}

func (s *fakeStorage) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, path string) ([]byte, error) {
	s.log.add("download")
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.data, nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error { return nil }

type fakeExtractor struct {
	log      *callLog
	text     string
	err      error
	filename string
	// block makes Extract wait for the context to expire.
	block bool
}

func (e *fakeExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	e.log.add("extract")
	e.filename = filename
	if e.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return e.text, e.err
}

type fakeEmbedder struct {
	log   *callLog
	vec   pgvector.Vector
	err   error
	input string
}

func (e *fakeEmbedder) GenerateEmbeddings(ctx context.Context, text string) (pgvector.Vector, error) {
	e.log.add("embed")
	e.input = text
	return e.vec, e.err
}

type fakePublisher struct {
	mu     sync.Mutex
	talent []event.TalentEventPayload
	done   chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{done: make(chan struct{}, 8)}
}

func (p *fakePublisher) PublishTalentEvent(ctx context.Context, payload event.TalentEventPayload) error {
	p.mu.Lock()
	p.talent = append(p.talent, payload)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *fakePublisher) PublishInvitationEvent(ctx context.Context, payload event.InvitationEventPayload) error {
	return nil
}

func (p *fakePublisher) PublishApplicationEvent(ctx context.Context, payload event.ApplicationEventPayload) error {
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released int
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.held, key)
			l.released++
		})
	}, true, nil
}

var errTransient = errors.New("connection reset")
