package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/internal/domain/user"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{byEmail: map[string]*user.User{}} }

func (r *memUserRepo) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return apperror.NewConflict("user", "email", u.Email)
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return nil, apperror.NewNotFound("user", id.String())
}

type memTalentRepo struct {
	talent.Repository
	saved []*talent.Profile
}

func (r *memTalentRepo) Save(ctx context.Context, p *talent.Profile) error {
	r.saved = append(r.saved, p)
	return nil
}

type memEmployerRepo struct {
	employer.Repository
	saved []*employer.Employer
}

func (r *memEmployerRepo) Save(ctx context.Context, e *employer.Employer) error {
	r.saved = append(r.saved, e)
	return nil
}

type memStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	contentType string
	err         error
}

func (s *memStorage) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	b, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = b
	s.contentType = contentType
	return nil
}

func (s *memStorage) Download(ctx context.Context, path string) ([]byte, error) { return nil, nil }
func (s *memStorage) Delete(ctx context.Context, path string) error              { return nil }

type chanPublisher struct {
	talent chan event.TalentEventPayload
}

func (p *chanPublisher) PublishTalentEvent(ctx context.Context, payload event.TalentEventPayload) error {
	p.talent <- payload
	return nil
}
func (p *chanPublisher) PublishInvitationEvent(ctx context.Context, payload event.InvitationEventPayload) error {
	return nil
}
func (p *chanPublisher) PublishApplicationEvent(ctx context.Context, payload event.ApplicationEventPayload) error {
	return nil
}

func resume(name, body string) *talent.ResumeFile {
	return &talent.ResumeFile{Name: name, Size: int64(len(body)), Body: bytes.NewBufferString(body)}
}

func TestSignupTalent(t *testing.T) {
	users, talents := newMemUserRepo(), &memTalentRepo{}
	storage := &memStorage{objects: map[string][]byte{}}
	pub := &chanPublisher{talent: make(chan event.TalentEventPayload, 1)}
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	uc := NewSignupTalentUseCase(users, talents, storage, pub, jwtSvc, logger.NewNop())

	out, err := uc.Execute(context.Background(), SignupTalentInput{
		Email:      "  Lan@Example.com ",
		Password:   "supersecret",
		FullName:   "Lan Nguyen",
		Bio:        "Backend engineer",
		Locations:  []string{"Hanoi", " "},
		WorkStyles: []string{"Remote"},
		Resume:     resume("CV.PDF", "%PDF-1.4"),
	})
	require.NoError(t, err)

	require.Len(t, talents.saved, 1)
	p := talents.saved[0]
	assert.Equal(t, out.UserID, p.UserID)
	assert.Equal(t, []string{"Hanoi"}, p.Locations)
	require.True(t, p.HasResume())
	assert.True(t, strings.HasPrefix(*p.ResumePath, out.UserID.String()+"/"))
	assert.True(t, strings.HasSuffix(*p.ResumePath, ".pdf"))
	assert.Equal(t, []byte("%PDF-1.4"), storage.objects[*p.ResumePath])
	assert.Equal(t, "application/pdf", storage.contentType)

	u, err := users.FindByEmail(context.Background(), "lan@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTalent, u.Role)

	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTalent, claims.Role)

	select {
	case ev := <-pub.talent:
		assert.Equal(t, event.TalentEventTypeResumeUploaded, ev.EventType)
		assert.Equal(t, p.ID, ev.ProfileID)
	case <-time.After(time.Second):
		t.Fatal("resume_uploaded event not published")
	}
}

func TestSignupTalent_ValidationBeforeIO(t *testing.T) {
	storage := &memStorage{objects: map[string][]byte{}}
	uc := NewSignupTalentUseCase(newMemUserRepo(), &memTalentRepo{}, storage, &chanPublisher{}, auth.NewJWTService("s", time.Hour), logger.NewNop())

	tests := []struct {
		name  string
		input SignupTalentInput
		want  error
	}{
		{"missing resume", SignupTalentInput{Email: "a@b.co", Password: "longenough", FullName: "A"}, talent.ErrResumeRequired},
		{"bad resume type", SignupTalentInput{Email: "a@b.co", Password: "longenough", FullName: "A", Resume: resume("cv.exe", "MZ")}, talent.ErrUnsupportedResume},
		{"no name", SignupTalentInput{Email: "a@b.co", Password: "longenough", Resume: resume("cv.pdf", "x")}, ErrFullNameRequired},
		{"weak password", SignupTalentInput{Email: "a@b.co", Password: "short", FullName: "A", Resume: resume("cv.pdf", "x")}, user.ErrPasswordTooWeak},
		{"bad email", SignupTalentInput{Email: "nope", Password: "longenough", FullName: "A", Resume: resume("cv.pdf", "x")}, user.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, storage.objects)
		})
	}
}

func TestSignupTalent_DuplicateEmail(t *testing.T) {
	users := newMemUserRepo()
	require.NoError(t, users.Save(context.Background(), &user.User{ID: uuid.New(), Email: "a@b.co"}))
	storage := &memStorage{objects: map[string][]byte{}}
	uc := NewSignupTalentUseCase(users, &memTalentRepo{}, storage, &chanPublisher{}, auth.NewJWTService("s", time.Hour), logger.NewNop())

	_, err := uc.Execute(context.Background(), SignupTalentInput{Email: "A@b.co", Password: "longenough", FullName: "A", Resume: resume("cv.pdf", "x")})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Empty(t, storage.objects)
}

func TestSignupTalent_StorageDown(t *testing.T) {
	users := newMemUserRepo()
	storage := &memStorage{objects: map[string][]byte{}, err: errors.New("minio down")}
	uc := NewSignupTalentUseCase(users, &memTalentRepo{}, storage, &chanPublisher{}, auth.NewJWTService("s", time.Hour), logger.NewNop())

	_, err := uc.Execute(context.Background(), SignupTalentInput{Email: "a@b.co", Password: "longenough", FullName: "A", Resume: resume("cv.pdf", "x")})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	_, err = users.FindByEmail(context.Background(), "a@b.co")
	assert.ErrorIs(t, err, apperror.ErrNotFound, "no account without a stored resume")
}

func TestSignupEmployer(t *testing.T) {
	users, employers := newMemUserRepo(), &memEmployerRepo{}
	uc := NewSignupEmployerUseCase(users, employers, auth.NewJWTService("s", time.Hour), logger.NewNop())

	_, err := uc.Execute(context.Background(), SignupEmployerInput{Email: "hr@acme.io", Password: "longenough", CompanyName: "Acme", Website: "acme.io"})
	assert.ErrorIs(t, err, employer.ErrInvalidWebsite)

	out, err := uc.Execute(context.Background(), SignupEmployerInput{Email: "hr@acme.io", Password: "longenough", CompanyName: "Acme", Website: "https://acme.io"})
	require.NoError(t, err)
	require.Len(t, employers.saved, 1)
	assert.Equal(t, out.UserID, employers.saved[0].UserID)
	assert.Equal(t, out.ProfileID, employers.saved[0].ID)
}

func TestLogin(t *testing.T) {
	users := newMemUserRepo()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	u := &user.User{ID: uuid.New(), Email: "hr@acme.io", PasswordHash: hash, Role: auth.RoleEmployer}
	require.NoError(t, users.Save(context.Background(), u))
	jwtSvc := auth.NewJWTService("s", time.Hour)
	uc := NewLoginUseCase(users, jwtSvc, logger.NewNop())

	_, err = uc.Execute(context.Background(), LoginInput{Email: "hr@acme.io", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Execute(context.Background(), LoginInput{Email: "ghost@acme.io", Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	out, err := uc.Execute(context.Background(), LoginInput{Email: " HR@acme.io", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleEmployer, out.Role)
	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}
