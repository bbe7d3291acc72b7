package saved

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
)

type SavedCandidatesUseCase struct {
	savedRepo    saved.Repository
	employerRepo employer.Repository
}

func NewSavedCandidatesUseCase(sRepo saved.Repository, eRepo employer.Repository) *SavedCandidatesUseCase {
	return &SavedCandidatesUseCase{savedRepo: sRepo, employerRepo: eRepo}
}

func (uc *SavedCandidatesUseCase) employer(ctx context.Context, session auth.SessionContext) (*employer.Employer, error) {
	if !session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("employer account required")
	}
	emp, err := uc.employerRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	return emp, nil
}

// ExecuteToggle saves or unsaves a candidate by talent profile id.
func (uc *SavedCandidatesUseCase) ExecuteToggle(ctx context.Context, input ToggleInput) (*ToggleOutput, error) {
	emp, err := uc.employer(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	switch input.Kind {
	case saved.KindSave:
		err = uc.savedRepo.SaveCandidate(ctx, saved.SavedCandidate{
			EmployerID: emp.ID,
			TalentID:   input.ID,
			SavedAt:    time.Now().UTC(),
		})
	case saved.KindUnsave:
		err = uc.savedRepo.UnsaveCandidate(ctx, emp.ID, input.ID)
	default:
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown saved command %q", input.Kind), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s candidate failed: %w", input.Kind, err)
	}
	return &ToggleOutput{ID: input.ID, Saved: input.Kind == saved.KindSave}, nil
}

type ListCandidatesInput struct {
	Session auth.SessionContext
	Limit   int
	Offset  int
}

func (uc *SavedCandidatesUseCase) ExecuteList(ctx context.Context, input ListCandidatesInput) ([]saved.CandidateRow, error) {
	emp, err := uc.employer(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := uc.savedRepo.ListCandidates(ctx, emp.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list saved candidates failed: %w", err)
	}
	return rows, nil
}

var csvHeader = []string{"saved_at", "full_name", "email", "locations", "industries", "work_styles", "skills", "bio"}

// ExecuteExport writes every saved candidate as CSV to w.
func (uc *SavedCandidatesUseCase) ExecuteExport(ctx context.Context, session auth.SessionContext, w io.Writer) (int, error) {
	emp, err := uc.employer(ctx, session)
	if err != nil {
		return 0, err
	}
	rows, err := uc.savedRepo.ListCandidates(ctx, emp.ID, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("list saved candidates failed: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, r := range rows {
		p := r.Profile
		record := []string{
			r.SavedAt.UTC().Format(time.RFC3339),
			p.FullName,
			r.Email,
			strings.Join(p.Locations, "; "),
			strings.Join(p.Industries, "; "),
			strings.Join(p.WorkStyles, "; "),
			strings.Join(p.Skills, "; "),
			p.Bio,
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

// ParseKind maps an HTTP method to a saved command.
func ParseKind(method string) (saved.Kind, bool) {
	switch strings.ToUpper(method) {
	case "POST", "PUT":
		return saved.KindSave, true
	case "DELETE":
		return saved.KindUnsave, true
	}
	return "", false
}
