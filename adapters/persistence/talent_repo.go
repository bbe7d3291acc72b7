package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const talentColumns = "id, user_id, full_name, bio, locations, industries, work_styles, skills, resume_path, embedding, created_at, updated_at"

type postgresTalentRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresTalentRepo(db *pgxpool.Pool, logger logger.Logger) talent.Repository {
	return &postgresTalentRepo{db: db, logger: logger}
}

func scanTalent(row pgx.Row) (*talent.Profile, error) {
	p := &talent.Profile{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Bio,
		&p.Locations, &p.Industries, &p.WorkStyles, &p.Skills,
		&p.ResumePath, &p.Embedding, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectTalents(rows pgx.Rows) ([]*talent.Profile, error) {
	defer rows.Close()
	out := make([]*talent.Profile, 0)
	for rows.Next() {
		p, err := scanTalent(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan talent row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating talent rows", err)
	}
	return out, nil
}

func (r *postgresTalentRepo) Save(ctx context.Context, p *talent.Profile) error {
	query := `
		INSERT INTO talents (id, user_id, full_name, bio, locations, industries, work_styles, skills, resume_path, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.FullName, p.Bio,
		nonNil(p.Locations), nonNil(p.Industries), nonNil(p.WorkStyles), nonNil(p.Skills),
		p.ResumePath, p.Embedding, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("talent profile", "user_id", p.UserID.String())
		}
		return apperror.NewInternal("failed to save talent profile", err)
	}
	return nil
}

// Update writes every mutable column, including a cleared embedding.
func (r *postgresTalentRepo) Update(ctx context.Context, p *talent.Profile) error {
	query := `
		UPDATE talents SET
			full_name = $2, bio = $3, locations = $4, industries = $5, work_styles = $6,
			skills = $7, resume_path = $8, embedding = $9, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.FullName, p.Bio,
		nonNil(p.Locations), nonNil(p.Industries), nonNil(p.WorkStyles), nonNil(p.Skills),
		p.ResumePath, p.Embedding,
	)
	if err != nil {
		return apperror.NewInternal("failed to update talent profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("talent profile", p.ID.String())
	}
	return nil
}

func (r *postgresTalentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*talent.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+talentColumns+` FROM talents WHERE user_id = $1`, userID)
	p, err := scanTalent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("talent profile", userID.String())
		}
		return nil, apperror.NewInternal("failed to query talent profile", err)
	}
	return p, nil
}

func (r *postgresTalentRepo) FindByID(ctx context.Context, id uuid.UUID) (*talent.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+talentColumns+` FROM talents WHERE id = $1`, id)
	p, err := scanTalent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("talent profile", id.String())
		}
		return nil, apperror.NewInternal("failed to query talent profile", err)
	}
	return p, nil
}

func (r *postgresTalentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*talent.Profile, error) {
	if len(ids) == 0 {
		return []*talent.Profile{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+talentColumns+` FROM talents WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperror.NewInternal("failed to query talent profiles", err)
	}
	return collectTalents(rows)
}

func (r *postgresTalentRepo) UpdateEmbedding(ctx context.Context, profileID uuid.UUID, vec pgvector.Vector) error {
	tag, err := r.db.Exec(ctx, `UPDATE talents SET embedding = $2, updated_at = $3 WHERE id = $1`, profileID, vec, time.Now().UTC())
	if err != nil {
		return apperror.NewInternal("failed to update talent embedding", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("talent profile", profileID.String())
	}
	return nil
}

func (r *postgresTalentRepo) ListUnenriched(ctx context.Context, limit int) ([]*talent.Profile, error) {
	builder := psql.Select(talentColumns).
		From("talents").
		Where(sq.Eq{"embedding": nil}).
		Where(sq.NotEq{"resume_path": nil}).
		OrderBy("updated_at ASC").
		Limit(uint64(limit))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build unenriched query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query unenriched talents", err)
	}
	return collectTalents(rows)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// arrayOverlapFold matches rows whose array column shares any element with
// values, ignoring case.
func arrayOverlapFold(column string, values []string) sq.Sqlizer {
	return sq.Expr(fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(%s) v WHERE lower(v) = ANY(?))", column), lowerAll(values))
}

func buildTalentSearch(params talent.SearchParams) sq.SelectBuilder {
	builder := psql.Select(talentColumns).From("talents")

	if q := strings.TrimSpace(params.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"bio": pattern},
			sq.Expr("array_to_string(skills, ' ') ILIKE ?", pattern),
		})
	}
	if len(params.Locations) > 0 {
		builder = builder.Where(arrayOverlapFold("locations", params.Locations))
	}
	if len(params.Industries) > 0 {
		builder = builder.Where(arrayOverlapFold("industries", params.Industries))
	}
	if len(params.WorkStyles) > 0 {
		builder = builder.Where(arrayOverlapFold("work_styles", params.WorkStyles))
	}

	return builder.OrderBy("updated_at DESC", "id").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))
}

func (r *postgresTalentRepo) Search(ctx context.Context, params talent.SearchParams) ([]*talent.Profile, error) {
	query, args, err := buildTalentSearch(params).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build candidate search", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to execute candidate search", err)
	}
	return collectTalents(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
