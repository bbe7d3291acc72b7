package opportunity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const embedTimeout = 10 * time.Second

type CreateOpportunityUseCase struct {
	oppRepo      opportunity.Repository
	employerRepo employer.Repository
	embedder     service.EmbeddingService
	logger       logger.Logger
}

func NewCreateOpportunityUseCase(oRepo opportunity.Repository, eRepo employer.Repository, embedder service.EmbeddingService, log logger.Logger) *CreateOpportunityUseCase {
	return &CreateOpportunityUseCase{
		oppRepo:      oRepo,
		employerRepo: eRepo,
		embedder:     embedder,
		logger:       log,
	}
}

type CreateOpportunityInput struct {
	Session         auth.SessionContext
	Title           string
	CompanyName     string
	Location        string
	Industry        string
	WorkStyle       string
	JobType         string
	ExperienceLevel string
	CompanySize     string
	SalaryMin       *int
	SalaryMax       *int
	Description     string
	Skills          []string
}

type CreateOpportunityOutput struct {
	Opportunity *opportunity.Opportunity
}

func (uc *CreateOpportunityUseCase) Execute(ctx context.Context, input CreateOpportunityInput) (*CreateOpportunityOutput, error) {
	if !input.Session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("only employers can post opportunities")
	}

	o := &opportunity.Opportunity{
		ID:              uuid.New(),
		Title:           input.Title,
		CompanyName:     input.CompanyName,
		Location:        input.Location,
		Industry:        input.Industry,
		WorkStyle:       input.WorkStyle,
		JobType:         input.JobType,
		ExperienceLevel: input.ExperienceLevel,
		CompanySize:     input.CompanySize,
		SalaryMin:       input.SalaryMin,
		SalaryMax:       input.SalaryMax,
		Description:     input.Description,
		Skills:          input.Skills,
		CreatedAt:       time.Now().UTC(),
	}
	if err := o.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	emp, err := uc.employerRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	o.EmployerID = emp.ID

	if err := uc.oppRepo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save opportunity failed: %w", err)
	}

	// Left for the worker backfill when the embedding service is down.
	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	if err := embedOpportunity(embedCtx, uc.oppRepo, uc.embedder, o); err != nil {
		uc.logger.Warn("Failed to embed new opportunity", zap.String("opportunity_id", o.ID.String()), zap.Error(err))
	}

	return &CreateOpportunityOutput{Opportunity: o}, nil
}

func embedOpportunity(ctx context.Context, repo opportunity.Repository, embedder service.EmbeddingService, o *opportunity.Opportunity) error {
	vec, err := embedder.GenerateEmbeddings(ctx, o.EmbeddingText())
	if err != nil {
		return err
	}
	if err := repo.UpdateEmbedding(ctx, o.ID, vec); err != nil {
		return err
	}
	o.Embedding = &vec
	return nil
}
