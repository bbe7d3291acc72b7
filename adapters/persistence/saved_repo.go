package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type postgresSavedRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSavedRepo(db *pgxpool.Pool) saved.Repository {
	return &postgresSavedRepo{db: db}
}

func (r *postgresSavedRepo) SaveOpportunity(ctx context.Context, s saved.SavedOpportunity) error {
	query := `
		INSERT INTO saved_opportunities (talent_id, opportunity_id, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (talent_id, opportunity_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, s.TalentID, s.OpportunityID, s.SavedAt); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("opportunity", s.OpportunityID.String())
		}
		return apperror.NewInternal("failed to save opportunity", err)
	}
	return nil
}

func (r *postgresSavedRepo) UnsaveOpportunity(ctx context.Context, talentID, opportunityID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_opportunities WHERE talent_id = $1 AND opportunity_id = $2`, talentID, opportunityID)
	if err != nil {
		return apperror.NewInternal("failed to unsave opportunity", err)
	}
	return nil
}

func (r *postgresSavedRepo) ListOpportunityIDs(ctx context.Context, talentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT opportunity_id FROM saved_opportunities WHERE talent_id = $1 ORDER BY saved_at DESC`, talentID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query saved opportunities", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.NewInternal("failed to scan saved opportunity", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating saved opportunities", err)
	}
	return ids, nil
}

func (r *postgresSavedRepo) SaveCandidate(ctx context.Context, s saved.SavedCandidate) error {
	query := `
		INSERT INTO saved_candidates (employer_id, talent_id, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (employer_id, talent_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, s.EmployerID, s.TalentID, s.SavedAt); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("talent profile", s.TalentID.String())
		}
		return apperror.NewInternal("failed to save candidate", err)
	}
	return nil
}

func (r *postgresSavedRepo) UnsaveCandidate(ctx context.Context, employerID, talentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_candidates WHERE employer_id = $1 AND talent_id = $2`, employerID, talentID)
	if err != nil {
		return apperror.NewInternal("failed to unsave candidate", err)
	}
	return nil
}

func (r *postgresSavedRepo) ListCandidates(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]saved.CandidateRow, error) {
	builder := psql.Select(
		"sc.saved_at", "u.email",
		"t.id", "t.user_id", "t.full_name", "t.bio", "t.locations", "t.industries",
		"t.work_styles", "t.skills", "t.resume_path", "t.created_at", "t.updated_at",
	).
		From("saved_candidates sc").
		Join("talents t ON t.id = sc.talent_id").
		Join("users u ON u.id = t.user_id").
		Where(sq.Eq{"sc.employer_id": employerID}).
		OrderBy("sc.saved_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build saved candidates query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query saved candidates", err)
	}
	defer rows.Close()

	out := make([]saved.CandidateRow, 0)
	for rows.Next() {
		p := &talent.Profile{}
		row := saved.CandidateRow{Profile: p}
		if err := rows.Scan(
			&row.SavedAt, &row.Email,
			&p.ID, &p.UserID, &p.FullName, &p.Bio, &p.Locations, &p.Industries,
			&p.WorkStyles, &p.Skills, &p.ResumePath, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperror.NewInternal("failed to scan saved candidate", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating saved candidates", err)
	}
	return out, nil
}
