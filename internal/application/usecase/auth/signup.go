package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/internal/domain/user"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var ErrFullNameRequired = errors.New("full name is required")

type SignupOutput struct {
	UserID      uuid.UUID
	ProfileID   uuid.UUID
	AccessToken string
}

func newUser(ctx context.Context, repo user.Repository, email, password string, role auth.Role, now time.Time) (*user.User, error) {
	email, err := user.NormalizeEmail(email)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid email", err)
	}
	if err := user.ValidatePassword(password); err != nil {
		return nil, apperror.NewInvalidInput("weak password", err)
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperror.NewConflict("user", "email", email)
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}
	return &user.User{ID: uuid.New(), Email: email, PasswordHash: hash, Role: role, CreatedAt: now}, nil
}

type SignupTalentUseCase struct {
	userRepo   user.Repository
	talentRepo talent.Repository
	storage    service.ResumeStorage
	publisher  service.EventPublisher
	jwtSvc     *auth.JWTService
	logger     logger.Logger
}

func NewSignupTalentUseCase(ur user.Repository, tr talent.Repository, storage service.ResumeStorage, publisher service.EventPublisher, jwtSvc *auth.JWTService, log logger.Logger) *SignupTalentUseCase {
	return &SignupTalentUseCase{
		userRepo:   ur,
		talentRepo: tr,
		storage:    storage,
		publisher:  publisher,
		jwtSvc:     jwtSvc,
		logger:     log,
	}
}

type SignupTalentInput struct {
	Email      string
	Password   string
	FullName   string
	Bio        string
	Locations  []string
	Industries []string
	WorkStyles []string
	Skills     []string
	Resume     *talent.ResumeFile
}

// Execute creates the account, stores the resume and announces it so the
// worker can build the embedding. Enrichment is not awaited here.
func (uc *SignupTalentUseCase) Execute(ctx context.Context, input SignupTalentInput) (*SignupOutput, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, apperror.NewInvalidInput("full name is required", ErrFullNameRequired)
	}
	ext, contentType, err := input.Resume.Validate()
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid resume", err)
	}

	now := time.Now().UTC()
	u, err := newUser(ctx, uc.userRepo, input.Email, input.Password, auth.RoleTalent, now)
	if err != nil {
		return nil, err
	}

	resumePath := talent.ResumeObjectPath(u.ID, ext)
	if err := uc.storage.Upload(ctx, resumePath, input.Resume.Body, input.Resume.Size, contentType); err != nil {
		return nil, apperror.NewUnavailable("resume storage", err)
	}

	profile := &talent.Profile{ID: uuid.New(), UserID: u.ID, CreatedAt: now, UpdatedAt: now, ResumePath: &resumePath}
	fullName, bio := input.FullName, input.Bio
	profile.Apply(talent.Preferences{
		FullName:   &fullName,
		Bio:        &bio,
		Locations:  input.Locations,
		Industries: input.Industries,
		WorkStyles: input.WorkStyles,
		Skills:     input.Skills,
	})

	if err := uc.userRepo.Save(ctx, u); err != nil {
		go uc.storage.Delete(context.Background(), resumePath)
		return nil, err
	}
	if err := uc.talentRepo.Save(ctx, profile); err != nil {
		go uc.storage.Delete(context.Background(), resumePath)
		return nil, err
	}

	go func() {
		err := uc.publisher.PublishTalentEvent(context.Background(), event.TalentEventPayload{
			EventType:  event.TalentEventTypeResumeUploaded,
			ProfileID:  profile.ID,
			UserID:     u.ID,
			OccurredAt: now,
		})
		if err != nil {
			uc.logger.Error("Failed to publish Kafka 'resume_uploaded' event", err, zap.String("user_id", u.ID.String()))
		}
	}()

	token, err := uc.jwtSvc.GenerateToken(u.ID, u.Role)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	uc.logger.Info("Talent signed up", zap.String("user_id", u.ID.String()))
	return &SignupOutput{UserID: u.ID, ProfileID: profile.ID, AccessToken: token}, nil
}

type SignupEmployerUseCase struct {
	userRepo     user.Repository
	employerRepo employer.Repository
	jwtSvc       *auth.JWTService
	logger       logger.Logger
}

func NewSignupEmployerUseCase(ur user.Repository, er employer.Repository, jwtSvc *auth.JWTService, log logger.Logger) *SignupEmployerUseCase {
	return &SignupEmployerUseCase{userRepo: ur, employerRepo: er, jwtSvc: jwtSvc, logger: log}
}

type SignupEmployerInput struct {
	Email       string
	Password    string
	CompanyName string
	Website     string
}

func (uc *SignupEmployerUseCase) Execute(ctx context.Context, input SignupEmployerInput) (*SignupOutput, error) {
	now := time.Now().UTC()
	emp := &employer.Employer{
		ID:          uuid.New(),
		CompanyName: strings.TrimSpace(input.CompanyName),
		Website:     strings.TrimSpace(input.Website),
		CreatedAt:   now,
	}
	if err := emp.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	u, err := newUser(ctx, uc.userRepo, input.Email, input.Password, auth.RoleEmployer, now)
	if err != nil {
		return nil, err
	}
	emp.UserID = u.ID

	if err := uc.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	if err := uc.employerRepo.Save(ctx, emp); err != nil {
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID, u.Role)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	uc.logger.Info("Employer signed up", zap.String("user_id", u.ID.String()))
	return &SignupOutput{UserID: u.ID, ProfileID: emp.ID, AccessToken: token}, nil
}
