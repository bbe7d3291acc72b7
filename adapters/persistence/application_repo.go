package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/talent-match/internal/domain/application"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type postgresApplicationRepo struct {
	db *pgxpool.Pool
}

func NewPostgresApplicationRepo(db *pgxpool.Pool) application.Repository {
	return &postgresApplicationRepo{db: db}
}

func (r *postgresApplicationRepo) Save(ctx context.Context, a *application.Application) error {
	query := `INSERT INTO interests (id, talent_id, opportunity_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, a.ID, a.TalentID, a.OpportunityID, a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewAppError(apperror.ErrConflict, "application conflict", a.OpportunityID.String(), application.ErrAlreadyApplied)
		}
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("opportunity", a.OpportunityID.String())
		}
		return apperror.NewInternal("failed to save application", err)
	}
	return nil
}

func (r *postgresApplicationRepo) ListByTalent(ctx context.Context, talentID uuid.UUID, limit, offset int) ([]*application.Application, error) {
	query, args, err := psql.Select("id", "talent_id", "opportunity_id", "created_at").
		From("interests").
		Where(sq.Eq{"talent_id": talentID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build application query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query applications", err)
	}
	defer rows.Close()

	out := make([]*application.Application, 0)
	for rows.Next() {
		a := &application.Application{}
		if err := rows.Scan(&a.ID, &a.TalentID, &a.OpportunityID, &a.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan application", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating applications", err)
	}
	return out, nil
}

func (r *postgresApplicationRepo) ListApplicants(ctx context.Context, opportunityID uuid.UUID, limit, offset int) ([]application.Applicant, error) {
	query, args, err := psql.Select("i.id", "t.id", "t.full_name", "u.email", "i.created_at").
		From("interests i").
		Join("talents t ON t.id = i.talent_id").
		Join("users u ON u.id = t.user_id").
		Where(sq.Eq{"i.opportunity_id": opportunityID}).
		OrderBy("i.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build applicants query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query applicants", err)
	}
	defer rows.Close()

	out := make([]application.Applicant, 0)
	for rows.Next() {
		var a application.Applicant
		if err := rows.Scan(&a.ApplicationID, &a.TalentID, &a.FullName, &a.Email, &a.AppliedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan applicant", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating applicants", err)
	}
	return out, nil
}
