package employer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type memEmployers struct {
	e         *employer.Employer
	updateErr error
	updates   int
}

func (r *memEmployers) Save(ctx context.Context, e *employer.Employer) error { return nil }

func (r *memEmployers) Update(ctx context.Context, e *employer.Employer) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	return nil
}

func (r *memEmployers) GetByUserID(ctx context.Context, userID uuid.UUID) (*employer.Employer, error) {
	if r.e.UserID != userID {
		return nil, apperror.NewNotFound("employer", userID.String())
	}
	cp := *r.e
	return &cp, nil
}

type fakeUploader struct {
	folder, publicID string
	body             string
	err              error
	deleted          chan string
}

func (u *fakeUploader) Upload(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(file)
	u.body, u.folder, u.publicID = string(b), folder, publicID
	return "https://img.example.com/" + folder + "/" + publicID + ".png", nil
}

func (u *fakeUploader) Delete(ctx context.Context, publicID string) error {
	u.deleted <- publicID
	return nil
}

func fixture() (*EmployerUseCase, *memEmployers, *fakeUploader, auth.SessionContext) {
	e := &employer.Employer{ID: uuid.New(), UserID: uuid.New(), CompanyName: "Acme"}
	repo := &memEmployers{e: e}
	up := &fakeUploader{deleted: make(chan string, 1)}
	return NewEmployerUseCase(repo, up, logger.NewNop()), repo, up, auth.SessionContext{UserID: e.UserID, Role: auth.RoleEmployer}
}

func TestUpdateEmployer(t *testing.T) {
	uc, repo, _, session := fixture()
	site := "https://acme.io"

	e, err := uc.ExecuteUpdate(context.Background(), UpdateInput{Session: session, Website: &site})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.io", e.Website)
	assert.Equal(t, "Acme", e.CompanyName)
	assert.Equal(t, 1, repo.updates)

	bad := "acme.io"
	_, err = uc.ExecuteUpdate(context.Background(), UpdateInput{Session: session, Website: &bad})
	assert.ErrorIs(t, err, employer.ErrInvalidWebsite)
	assert.Equal(t, 1, repo.updates)
}

func TestUploadLogo(t *testing.T) {
	uc, repo, up, session := fixture()

	e, err := uc.ExecuteUploadLogo(context.Background(), UploadLogoInput{
		Session: session, Filename: "acme.png", Size: 4, File: bytes.NewBufferString("\x89PNG"),
	})
	require.NoError(t, err)
	require.NotNil(t, e.LogoURL)
	assert.Equal(t, "logos/"+repo.e.ID.String(), up.folder)
	assert.Equal(t, "logo", up.publicID)
	assert.Equal(t, "\x89PNG", up.body)
}

func TestUploadLogo_Failures(t *testing.T) {
	t.Run("bad file never reaches the uploader", func(t *testing.T) {
		uc, _, up, session := fixture()
		_, err := uc.ExecuteUploadLogo(context.Background(), UploadLogoInput{Session: session, Filename: "x.gif", Size: 1, File: bytes.NewBufferString("G")})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		assert.Empty(t, up.folder)
	})

	t.Run("upload error is unavailable", func(t *testing.T) {
		uc, _, up, session := fixture()
		up.err = errors.New("cloudinary 500")
		_, err := uc.ExecuteUploadLogo(context.Background(), UploadLogoInput{Session: session, Filename: "x.jpg", Size: 1, File: bytes.NewBufferString("J")})
		assert.ErrorIs(t, err, apperror.ErrUnavailable)
	})

	t.Run("save failure removes a first logo", func(t *testing.T) {
		uc, repo, up, session := fixture()
		repo.updateErr = apperror.NewInternal("db down", nil)
		_, err := uc.ExecuteUploadLogo(context.Background(), UploadLogoInput{Session: session, Filename: "x.webp", Size: 1, File: bytes.NewBufferString("W")})
		assert.ErrorIs(t, err, apperror.ErrInternal)
		select {
		case id := <-up.deleted:
			assert.Equal(t, "logos/"+repo.e.ID.String()+"/logo", id)
		case <-time.After(time.Second):
			t.Fatal("orphaned logo not deleted")
		}
	})
}
