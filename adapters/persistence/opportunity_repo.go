package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

const opportunityColumns = "id, employer_id, title, company_name, location, industry, work_style, job_type, experience_level, company_size, salary_min, salary_max, description, skills, created_at"

type postgresOpportunityRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOpportunityRepo(db *pgxpool.Pool) opportunity.Repository {
	return &postgresOpportunityRepo{db: db}
}

func scanOpportunity(row pgx.Row) (*opportunity.Opportunity, error) {
	o := &opportunity.Opportunity{}
	err := row.Scan(
		&o.ID, &o.EmployerID, &o.Title, &o.CompanyName, &o.Location, &o.Industry,
		&o.WorkStyle, &o.JobType, &o.ExperienceLevel, &o.CompanySize,
		&o.SalaryMin, &o.SalaryMax, &o.Description, &o.Skills, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresOpportunityRepo) query(ctx context.Context, builder sq.SelectBuilder) ([]*opportunity.Opportunity, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build opportunity query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query opportunities", err)
	}
	defer rows.Close()

	out := make([]*opportunity.Opportunity, 0)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan opportunity row", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating opportunity rows", err)
	}
	return out, nil
}

func (r *postgresOpportunityRepo) Save(ctx context.Context, o *opportunity.Opportunity) error {
	query := `
		INSERT INTO opportunities (id, employer_id, title, company_name, location, industry, work_style, job_type,
			experience_level, company_size, salary_min, salary_max, description, skills, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.EmployerID, o.Title, o.CompanyName, o.Location, o.Industry, o.WorkStyle, o.JobType,
		o.ExperienceLevel, o.CompanySize, o.SalaryMin, o.SalaryMax, o.Description, nonNil(o.Skills),
		o.Embedding, o.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("employer", o.EmployerID.String())
		}
		return apperror.NewInternal("failed to save opportunity", err)
	}
	return nil
}

func (r *postgresOpportunityRepo) Delete(ctx context.Context, id, employerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM opportunities WHERE id = $1 AND employer_id = $2`, id, employerID)
	if err != nil {
		return apperror.NewInternal("failed to delete opportunity", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("opportunity", id.String())
	}
	return nil
}

func (r *postgresOpportunityRepo) FindByID(ctx context.Context, id uuid.UUID) (*opportunity.Opportunity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	o, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("opportunity", id.String())
		}
		return nil, apperror.NewInternal("failed to query opportunity", err)
	}
	return o, nil
}

func (r *postgresOpportunityRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*opportunity.Opportunity, error) {
	if len(ids) == 0 {
		return []*opportunity.Opportunity{}, nil
	}
	return r.query(ctx, psql.Select(opportunityColumns).
		From("opportunities").
		Where("id = ANY(?)", ids).
		OrderBy("created_at DESC"))
}

func (r *postgresOpportunityRepo) ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*opportunity.Opportunity, error) {
	return r.query(ctx, psql.Select(opportunityColumns).
		From("opportunities").
		Where(sq.Eq{"employer_id": employerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

func (r *postgresOpportunityRepo) ListRecent(ctx context.Context, limit, offset int) ([]*opportunity.Opportunity, error) {
	return r.query(ctx, psql.Select(opportunityColumns).
		From("opportunities").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

func (r *postgresOpportunityRepo) Search(ctx context.Context, q string, limit, offset int) ([]*opportunity.Opportunity, error) {
	builder := psql.Select(opportunityColumns).From("opportunities")
	if q = strings.TrimSpace(q); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"company_name": pattern},
			sq.ILike{"description": pattern},
			sq.Expr("array_to_string(skills, ' ') ILIKE ?", pattern),
		})
	}
	return r.query(ctx, builder.
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

func (r *postgresOpportunityRepo) UpdateEmbedding(ctx context.Context, id uuid.UUID, vec pgvector.Vector) error {
	tag, err := r.db.Exec(ctx, `UPDATE opportunities SET embedding = $2 WHERE id = $1`, id, vec)
	if err != nil {
		return apperror.NewInternal("failed to update opportunity embedding", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("opportunity", id.String())
	}
	return nil
}

func (r *postgresOpportunityRepo) ListUnembedded(ctx context.Context, limit int) ([]*opportunity.Opportunity, error) {
	return r.query(ctx, psql.Select(opportunityColumns).
		From("opportunities").
		Where(sq.Eq{"embedding": nil}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)))
}

type postgresMatcher struct {
	db *pgxpool.Pool
}

func NewPostgresMatcher(db *pgxpool.Pool) opportunity.Matcher {
	return &postgresMatcher{db: db}
}

// Match returns each row of match_opportunities as a JSON object so the
// caller can decode them one at a time.
func (m *postgresMatcher) Match(ctx context.Context, userID uuid.UUID, offset, limit int) ([]json.RawMessage, error) {
	rows, err := m.db.Query(ctx, `SELECT to_jsonb(m) FROM match_opportunities($1, $2, $3) m`, userID, offset, limit)
	if err != nil {
		return nil, apperror.NewUnavailable("match_opportunities", err)
	}
	defer rows.Close()

	out := make([]json.RawMessage, 0, limit)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperror.NewInternal("failed to scan match row", err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewUnavailable("match_opportunities", err)
	}
	return out, nil
}
