package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/pkg/logger"
)

// declinedSuffix mimics the usual "always declined" test card 4000 0000 0000 0002.
const declinedSuffix = "0002"

// MockGateway approves every charge except the declined test card. It never
// leaves the process.
type MockGateway struct {
	latency time.Duration
	log     logger.Logger
}

func NewMockGateway(latency time.Duration, log logger.Logger) *MockGateway {
	return &MockGateway{latency: latency, log: log}
}

func (g *MockGateway) Charge(ctx context.Context, amountCents int64, card booking.Card) (string, error) {
	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.latency):
		}
	}

	last4 := card.Last4()
	if strings.HasSuffix(last4, declinedSuffix) {
		g.log.Info("Mock charge declined", zap.String("last4", last4), zap.Int64("amount_cents", amountCents))
		return "", booking.ErrCardDeclined
	}

	ref := "mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	g.log.Info("Mock charge approved", zap.String("last4", last4), zap.Int64("amount_cents", amountCents), zap.String("ref", ref))
	return ref, nil
}
