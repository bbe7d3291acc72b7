package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const bookingColumns = "id, talent_id, service, answers, slot_at, status, payment_ref, created_at, updated_at"

type postgresBookingRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresBookingRepo(db *pgxpool.Pool, logger logger.Logger) booking.Repository {
	return &postgresBookingRepo{db: db, logger: logger}
}

func (r *postgresBookingRepo) scan(row pgx.Row) (*booking.Booking, error) {
	b := &booking.Booking{}
	var answers []byte
	if err := row.Scan(&b.ID, &b.TalentID, &b.Service, &answers, &b.SlotAt, &b.Status, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &b.Answers); err != nil {
		r.logger.Warn("Failed to unmarshal booking answers", zap.String("booking_id", b.ID.String()), zap.Error(err))
		b.Answers = map[string]string{}
	}
	return b, nil
}

func (r *postgresBookingRepo) Save(ctx context.Context, b *booking.Booking) error {
	answers, err := json.Marshal(b.Answers)
	if err != nil {
		return apperror.NewInternal("failed to marshal booking answers", err)
	}
	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.Exec(ctx, query, b.ID, b.TalentID, b.Service, answers, b.SlotAt, b.Status, b.PaymentRef, b.CreatedAt, b.UpdatedAt); err != nil {
		return apperror.NewInternal("failed to save booking", err)
	}
	return nil
}

func (r *postgresBookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET slot_at = $2, status = $3, payment_ref = $4, updated_at = $5 WHERE id = $1`,
		b.ID, b.SlotAt, b.Status, b.PaymentRef, b.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("booking", b.ID.String())
	}
	return nil
}

func (r *postgresBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := r.scan(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("booking", id.String())
		}
		return nil, apperror.NewInternal("failed to query booking", err)
	}
	return b, nil
}

func (r *postgresBookingRepo) ListByTalent(ctx context.Context, talentID uuid.UUID) ([]*booking.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE talent_id = $1 ORDER BY created_at DESC`, talentID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query bookings", err)
	}
	defer rows.Close()

	out := make([]*booking.Booking, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan booking", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating bookings", err)
	}
	return out, nil
}
