package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/talent-match/internal/domain/invitation"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

const invitationColumns = "id, employer_id, talent_id, opportunity_id, message, status, created_at, updated_at"

type postgresInvitationRepo struct {
	db *pgxpool.Pool
}

func NewPostgresInvitationRepo(db *pgxpool.Pool) invitation.Repository {
	return &postgresInvitationRepo{db: db}
}

func scanInvitation(row pgx.Row) (*invitation.Invitation, error) {
	inv := &invitation.Invitation{}
	err := row.Scan(&inv.ID, &inv.EmployerID, &inv.TalentID, &inv.OpportunityID, &inv.Message, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *postgresInvitationRepo) Save(ctx context.Context, inv *invitation.Invitation) error {
	query := `INSERT INTO invites (` + invitationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.EmployerID, inv.TalentID, inv.OpportunityID, inv.Message, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("talent or opportunity", inv.TalentID.String())
		}
		return apperror.NewInternal("failed to save invitation", err)
	}
	return nil
}

func (r *postgresInvitationRepo) FindByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invites WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("invitation", id.String())
		}
		return nil, apperror.NewInternal("failed to query invitation", err)
	}
	return inv, nil
}

// UpdateStatus is a compare-and-set on the previous status so two
// concurrent responses cannot both win.
func (r *postgresInvitationRepo) UpdateStatus(ctx context.Context, inv *invitation.Invitation, from invitation.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invites SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		inv.ID, inv.Status, inv.UpdatedAt, from,
	)
	if err != nil {
		return apperror.NewInternal("failed to update invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewAppError(apperror.ErrConflict, "invitation already answered", inv.ID.String(), invitation.ErrInvalidTransition)
	}
	return nil
}

func (r *postgresInvitationRepo) list(ctx context.Context, where sq.Eq, limit, offset int) ([]*invitation.Invitation, error) {
	query, args, err := psql.Select(invitationColumns).
		From("invites").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build invitation query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query invitations", err)
	}
	defer rows.Close()

	out := make([]*invitation.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan invitation", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating invitations", err)
	}
	return out, nil
}

func (r *postgresInvitationRepo) ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*invitation.Invitation, error) {
	return r.list(ctx, sq.Eq{"employer_id": employerID}, limit, offset)
}

func (r *postgresInvitationRepo) ListByTalent(ctx context.Context, talentID uuid.UUID, limit, offset int) ([]*invitation.Invitation, error) {
	return r.list(ctx, sq.Eq{"talent_id": talentID}, limit, offset)
}
