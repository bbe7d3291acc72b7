package employer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const logoPublicID = "logo"

type EmployerUseCase struct {
	employerRepo employer.Repository
	uploader     service.Uploader
	logger       logger.Logger
}

func NewEmployerUseCase(eRepo employer.Repository, uploader service.Uploader, log logger.Logger) *EmployerUseCase {
	return &EmployerUseCase{employerRepo: eRepo, uploader: uploader, logger: log}
}

func (uc *EmployerUseCase) load(ctx context.Context, session auth.SessionContext) (*employer.Employer, error) {
	if !session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("employer account required")
	}
	e, err := uc.employerRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	return e, nil
}

func (uc *EmployerUseCase) ExecuteGet(ctx context.Context, session auth.SessionContext) (*employer.Employer, error) {
	return uc.load(ctx, session)
}

type UpdateInput struct {
	Session     auth.SessionContext
	CompanyName *string
	Website     *string
}

func (uc *EmployerUseCase) ExecuteUpdate(ctx context.Context, input UpdateInput) (*employer.Employer, error) {
	e, err := uc.load(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	if input.CompanyName != nil {
		e.CompanyName = *input.CompanyName
	}
	if input.Website != nil {
		e.Website = *input.Website
	}
	if err := e.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}
	if err := uc.employerRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update employer failed: %w", err)
	}
	return e, nil
}

type UploadLogoInput struct {
	Session  auth.SessionContext
	Filename string
	Size     int64
	File     io.Reader
}

// ExecuteUploadLogo overwrites the employer's logo asset and stores its URL.
func (uc *EmployerUseCase) ExecuteUploadLogo(ctx context.Context, input UploadLogoInput) (*employer.Employer, error) {
	if err := employer.ValidateLogo(input.Filename, input.Size); err != nil {
		return nil, apperror.NewInvalidInput("invalid logo", err)
	}
	e, err := uc.load(ctx, input.Session)
	if err != nil {
		return nil, err
	}

	folder := employer.LogoFolder(e.ID)
	url, err := uc.uploader.Upload(ctx, input.File, folder, logoPublicID)
	if err != nil {
		return nil, apperror.NewUnavailable("image upload", err)
	}

	hadLogo := e.LogoURL != nil
	e.LogoURL = &url
	if err := uc.employerRepo.Update(ctx, e); err != nil {
		if !hadLogo {
			go func() {
				if err := uc.uploader.Delete(context.Background(), folder+"/"+logoPublicID); err != nil {
					uc.logger.Warn("Failed to remove orphaned logo", zap.String("employer_id", e.ID.String()), zap.Error(err))
				}
			}()
		}
		return nil, fmt.Errorf("update employer failed: %w", err)
	}
	return e, nil
}
