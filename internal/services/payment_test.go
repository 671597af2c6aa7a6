package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateCard(t *testing.T) {
	now := time.Date(2024, 6, 18, 15, 0, 0, 0, time.UTC)
	valid := NewCard{
		Number:      "4111 1111 1111 1111",
		HolderName:  " Amira Hassan ",
		ExpiryMonth: 1,
		ExpiryYear:  2026,
		CardType:    "Visa",
	}

	tests := []struct {
		name    string
		mutate  func(c *NewCard)
		wantErr string
	}{
		{"valid", func(c *NewCard) {}, ""},
		{"thirteen digits", func(c *NewCard) { c.Number = "4222222222222" }, ""},
		{"expires this month", func(c *NewCard) { c.ExpiryMonth, c.ExpiryYear = 6, 2024 }, ""},
		{"twelve digits", func(c *NewCard) { c.Number = "411111111111" }, "Invalid card number"},
		{"seventeen digits", func(c *NewCard) { c.Number = "41111111111111111" }, "Invalid card number"},
		{"letters", func(c *NewCard) { c.Number = "4111-1111-1111-1111" }, "Invalid card number"},
		{"no holder", func(c *NewCard) { c.HolderName = "  " }, "Card holder name is required"},
		{"expired last month", func(c *NewCard) { c.ExpiryMonth, c.ExpiryYear = 5, 2024 }, "Card has expired"},
		{"bad month", func(c *NewCard) { c.ExpiryMonth = 13 }, "Invalid card expiry date"},
		{"unknown type", func(c *NewCard) { c.CardType = "Diners" }, `Unknown card type "Diners"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := valid
			tt.mutate(&card)
			_, err := validateCard(card, now)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			requireKind(t, err, ErrValidation)
			require.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateCard_Normalizes(t *testing.T) {
	card, err := validateCard(NewCard{
		Number:      "5500 0000 0000 0004",
		HolderName:  " Omar Said ",
		ExpiryMonth: 9,
		ExpiryYear:  2027,
	}, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "0004", card.last4)
	require.Equal(t, "Omar Said", card.holder)
	require.Equal(t, "Visa", card.cardType)
	require.Equal(t, "Visa ****0004", card.reference())
	require.Equal(t, time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC), card.expiry)
}
