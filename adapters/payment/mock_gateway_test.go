package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/pkg/logger"
)

func TestMockGateway(t *testing.T) {
	g := NewMockGateway(0, logger.NewNop())

	ref, err := g.Charge(context.Background(), 4900, booking.Card{Number: "4242 4242 4242 4242"})
	require.NoError(t, err)
	assert.Regexp(t, `^mock_[0-9a-f]{32}$`, ref)

	_, err = g.Charge(context.Background(), 4900, booking.Card{Number: "4000000000000002"})
	assert.ErrorIs(t, err, booking.ErrCardDeclined)
}

func TestMockGateway_RespectsContext(t *testing.T) {
	g := NewMockGateway(time.Second, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, 100, booking.Card{Number: "4242424242424242"})
	assert.ErrorIs(t, err, context.Canceled)
}
