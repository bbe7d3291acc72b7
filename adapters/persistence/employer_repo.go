package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type postgresEmployerRepo struct {
	db *pgxpool.Pool
}

func NewPostgresEmployerRepo(db *pgxpool.Pool) employer.Repository {
	return &postgresEmployerRepo{db: db}
}

func (r *postgresEmployerRepo) Save(ctx context.Context, e *employer.Employer) error {
	query := `INSERT INTO employers (id, user_id, company_name, website, logo_url, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(ctx, query, e.ID, e.UserID, e.CompanyName, e.Website, e.LogoURL, e.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("employer", "user_id", e.UserID.String())
		}
		return apperror.NewInternal("failed to save employer", err)
	}
	return nil
}

func (r *postgresEmployerRepo) Update(ctx context.Context, e *employer.Employer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE employers SET company_name = $2, website = $3, logo_url = $4 WHERE id = $1`,
		e.ID, e.CompanyName, e.Website, e.LogoURL,
	)
	if err != nil {
		return apperror.NewInternal("failed to update employer", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("employer", e.ID.String())
	}
	return nil
}

func (r *postgresEmployerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*employer.Employer, error) {
	e := &employer.Employer{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, company_name, website, logo_url, created_at FROM employers WHERE user_id = $1`, userID,
	).Scan(&e.ID, &e.UserID, &e.CompanyName, &e.Website, &e.LogoURL, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("employer", userID.String())
		}
		return nil, apperror.NewInternal("failed to query employer", err)
	}
	return e, nil
}
