package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
)

// Card types accepted by the checkout form.
var cardTypes = map[string]bool{
	"Visa":       true,
	"MasterCard": true,
	"AmEx":       true,
	"Other":      true,
}

// NewCard is a card entered at checkout. Save keeps it as the customer's
// default payment method; otherwise only a masked reference is recorded on
// the order.
type NewCard struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CardType    string
	Save        bool
}

// validatedCard is a NewCard that passed validation.
type validatedCard struct {
	last4    string
	holder   string
	cardType string
	expiry   time.Time
	save     bool
}

// reference is the masked card label stored on orders.
func (c validatedCard) reference() string {
	return fmt.Sprintf("%s ****%s", c.cardType, c.last4)
}

func (c validatedCard) expiryDate() datatypes.Date {
	return datatypes.Date(c.expiry)
}

// validateCard checks number length (13 to 16 digits once spaces are
// removed), the holder name and that the card does not expire before the
// first day of the current month.
func validateCard(card NewCard, now time.Time) (validatedCard, error) {
	number := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, card.Number)
	if len(number) < 13 || len(number) > 16 || strings.IndexFunc(number, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return validatedCard{}, validationErrorf("Invalid card number")
	}

	holder := strings.TrimSpace(card.HolderName)
	if holder == "" {
		return validatedCard{}, validationErrorf("Card holder name is required")
	}

	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 || card.ExpiryYear < 1 {
		return validatedCard{}, validationErrorf("Invalid card expiry date")
	}
	expiry := time.Date(card.ExpiryYear, time.Month(card.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC)
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if expiry.Before(monthStart) {
		return validatedCard{}, validationErrorf("Card has expired")
	}

	cardType := strings.TrimSpace(card.CardType)
	if cardType == "" {
		cardType = "Visa"
	}
	if !cardTypes[cardType] {
		return validatedCard{}, validationErrorf("Unknown card type %q", cardType)
	}

	return validatedCard{
		last4:    number[len(number)-4:],
		holder:   holder,
		cardType: cardType,
		expiry:   expiry,
		save:     card.Save,
	}, nil
}
