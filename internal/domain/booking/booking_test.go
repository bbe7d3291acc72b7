package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

func validAnswers() map[string]string {
	return map[string]string{"target_role": "Backend Engineer", "experience_years": "4"}
}

func TestStart(t *testing.T) {
	talentID := uuid.New()

	b, err := Start(talentID, ServiceResumeReview, validAnswers(), now)
	require.NoError(t, err)
	assert.Equal(t, StatusQuestionnaire, b.Status)
	assert.Equal(t, talentID, b.TalentID)

	_, err = Start(talentID, "astrology", validAnswers(), now)
	assert.ErrorIs(t, err, ErrUnknownService)

	_, err = Start(talentID, ServiceResumeReview, map[string]string{"target_role": "x", "experience_years": "  "}, now)
	assert.ErrorIs(t, err, ErrMissingAnswer)
}

func TestBooking_HappyPath(t *testing.T) {
	b, err := Start(uuid.New(), ServiceMockInterview, map[string]string{"target_role": "PM", "interview_type": "behavioral"}, now)
	require.NoError(t, err)

	require.NoError(t, b.Schedule(now.Add(48*time.Hour), now))
	assert.Equal(t, StatusScheduled, b.Status)
	require.NotNil(t, b.SlotAt)

	require.NoError(t, b.CanPay())
	require.NoError(t, b.MarkPaid("pay_123", now))
	assert.Equal(t, "pay_123", *b.PaymentRef)

	require.NoError(t, b.Confirm(now))
	assert.Equal(t, StatusConfirmed, b.Status)

	assert.ErrorIs(t, b.Cancel(now), ErrInvalidTransition)
}

func TestBooking_InvalidTransitions(t *testing.T) {
	b, err := Start(uuid.New(), ServiceResumeReview, validAnswers(), now)
	require.NoError(t, err)

	assert.ErrorIs(t, b.CanPay(), ErrInvalidTransition)
	assert.ErrorIs(t, b.Confirm(now), ErrInvalidTransition)
	assert.ErrorIs(t, b.Schedule(now.Add(-time.Hour), now), ErrSlotInPast)
	assert.Equal(t, StatusQuestionnaire, b.Status)

	require.NoError(t, b.Cancel(now))
	assert.ErrorIs(t, b.Schedule(now.Add(time.Hour), now), ErrInvalidTransition)
}

func TestBooking_CheckOwner(t *testing.T) {
	owner := uuid.New()
	b, err := Start(owner, ServiceResumeReview, validAnswers(), now)
	require.NoError(t, err)

	assert.NoError(t, b.CheckOwner(owner))
	assert.ErrorIs(t, b.CheckOwner(uuid.New()), ErrNotOwner)
}

func TestCard_Validate(t *testing.T) {
	valid := Card{Number: "4242 4242 4242 4242", ExpiryMonth: 12, ExpiryYear: 2027, CVC: "123"}

	tests := []struct {
		name   string
		mutate func(c *Card)
		want   error
	}{
		{"valid", func(c *Card) {}, nil},
		{"valid amex cvc", func(c *Card) { c.CVC = "1234" }, nil},
		{"expires this month", func(c *Card) { c.ExpiryMonth, c.ExpiryYear = 3, 2025 }, nil},
		{"luhn failure", func(c *Card) { c.Number = "4242 4242 4242 4241" }, ErrInvalidCardNumber},
		{"letters", func(c *Card) { c.Number = "4242abcd42424242" }, ErrInvalidCardNumber},
		{"too short", func(c *Card) { c.Number = "4242" }, ErrInvalidCardNumber},
		{"expired last month", func(c *Card) { c.ExpiryMonth, c.ExpiryYear = 2, 2025 }, ErrCardExpired},
		{"bad month", func(c *Card) { c.ExpiryMonth = 13 }, ErrCardExpired},
		{"short cvc", func(c *Card) { c.CVC = "12" }, ErrInvalidCVC},
		{"alpha cvc", func(c *Card) { c.CVC = "12a" }, ErrInvalidCVC},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate(now)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestCard_Last4(t *testing.T) {
	assert.Equal(t, "4242", Card{Number: "4242-4242-4242-4242"}.Last4())
}
