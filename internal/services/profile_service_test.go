package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bookstore/internal/models"
)

func TestAddAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.addCustomer(t, "amira")

	first, err := f.profiles.AddAddress(ctx, customer.ID, AddressInput{Line1: "1 Tahrir Sq", City: "Cairo"})
	require.NoError(t, err)
	require.True(t, first.IsDefault)
	require.Equal(t, "Egypt", first.Country)
	require.Equal(t, "Home", first.Type)

	second, err := f.profiles.AddAddress(ctx, customer.ID, AddressInput{Line1: "9 Port St", City: "Alexandria", Type: "Work"})
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	third, err := f.profiles.AddAddress(ctx, customer.ID, AddressInput{Line1: "3 Nile St", City: "Luxor", IsDefault: true})
	require.NoError(t, err)
	require.True(t, third.IsDefault)

	addresses, err := f.profiles.ListAddresses(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 3)
	require.Equal(t, third.ID, addresses[0].ID)
	require.False(t, addresses[1].IsDefault)
	require.False(t, addresses[2].IsDefault)

	tests := []struct {
		name string
		in   AddressInput
	}{
		{"missing line", AddressInput{City: "Cairo"}},
		{"missing city", AddressInput{Line1: "1 Tahrir Sq"}},
		{"unknown type", AddressInput{Line1: "1 Tahrir Sq", City: "Cairo", Type: "Holiday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.AddAddress(ctx, customer.ID, tt.in)
			requireKind(t, err, ErrValidation)
		})
	}
}

func TestSetDefaultAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amira := f.addCustomer(t, "amira")
	omar := f.addCustomer(t, "omar")
	home := f.addAddress(t, amira.ID, false)
	work := f.addAddress(t, amira.ID, false)
	theirs := f.addAddress(t, omar.ID, false)

	require.NoError(t, f.profiles.SetDefaultAddress(ctx, amira.ID, work.ID))
	addresses, err := f.profiles.ListAddresses(ctx, amira.ID)
	require.NoError(t, err)
	require.Equal(t, work.ID, addresses[0].ID)
	require.True(t, addresses[0].IsDefault)
	require.Equal(t, home.ID, addresses[1].ID)
	require.False(t, addresses[1].IsDefault)

	err = f.profiles.SetDefaultAddress(ctx, amira.ID, theirs.ID)
	requireKind(t, err, ErrNotFound)

	others, err := f.profiles.ListAddresses(ctx, omar.ID)
	require.NoError(t, err)
	require.True(t, others[0].IsDefault)
}

func TestDeleteAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Cosmos", "10.00", 10, 0)
	amira := f.addCustomer(t, "amira")
	omar := f.addCustomer(t, "omar")
	shipped := f.addAddress(t, amira.ID, true)
	spare := f.addAddress(t, amira.ID, false)

	_, err := f.carts.AddItem(ctx, amira.ID, "111", 1)
	require.NoError(t, err)
	_, err = f.orders.Checkout(ctx, amira.ID, CheckoutRequest{Payment: PaymentChoice{NewCard: visaCard()}})
	require.NoError(t, err)

	err = f.profiles.DeleteAddress(ctx, amira.ID, shipped.ID)
	requireKind(t, err, ErrIntegrity)

	err = f.profiles.DeleteAddress(ctx, omar.ID, spare.ID)
	requireKind(t, err, ErrNotFound)

	require.NoError(t, f.profiles.DeleteAddress(ctx, amira.ID, spare.ID))
	addresses, err := f.profiles.ListAddresses(ctx, amira.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	require.Equal(t, shipped.ID, addresses[0].ID)
}

func TestPaymentMethods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Cosmos", "10.00", 10, 0)
	amira := f.addCustomer(t, "amira")
	omar := f.addCustomer(t, "omar")
	f.addAddress(t, amira.ID, true)

	card := visaCard()
	card.Save = true
	_, err := f.carts.AddItem(ctx, amira.ID, "111", 1)
	require.NoError(t, err)
	order, err := f.orders.Checkout(ctx, amira.ID, CheckoutRequest{Payment: PaymentChoice{NewCard: card}})
	require.NoError(t, err)
	require.NotNil(t, order.PaymentMethodID)
	savedID := *order.PaymentMethodID

	other := models.PaymentMethod{CustomerID: amira.ID, CardLast4: "0004", CardHolderName: "Amira", CardType: "MasterCard"}
	require.NoError(t, f.db.Create(&other).Error)

	require.NoError(t, f.profiles.SetDefaultPaymentMethod(ctx, amira.ID, other.ID))
	methods, err := f.profiles.ListPaymentMethods(ctx, amira.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	require.Equal(t, other.ID, methods[0].ID)
	require.True(t, methods[0].IsDefault)
	require.False(t, methods[1].IsDefault)

	err = f.profiles.SetDefaultPaymentMethod(ctx, omar.ID, other.ID)
	requireKind(t, err, ErrNotFound)
	err = f.profiles.DeletePaymentMethod(ctx, omar.ID, savedID)
	requireKind(t, err, ErrNotFound)

	require.NoError(t, f.profiles.DeletePaymentMethod(ctx, amira.ID, savedID))
	stored, err := f.orders.GetOrder(ctx, amira.ID, order.ID)
	require.NoError(t, err)
	require.Nil(t, stored.PaymentMethodID)
	require.Equal(t, "Visa ****1111", stored.PaymentReference)

	methods, err = f.profiles.ListPaymentMethods(ctx, amira.ID)
	require.NoError(t, err)
	require.Len(t, methods, 1)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amira := f.addCustomer(t, "amira")
	f.addCustomer(t, "omar")

	updated, err := f.profiles.UpdateProfile(ctx, amira.ID, ProfileInput{
		FirstName: " Amira ",
		LastName:  "Fahmy",
		Email:     "amira.fahmy@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Amira", updated.FirstName)
	require.Equal(t, "amira", updated.Username)

	stored, err := f.profiles.GetProfile(ctx, amira.ID)
	require.NoError(t, err)
	require.Equal(t, "Fahmy", stored.LastName)
	require.Equal(t, "amira.fahmy@example.com", stored.Email)

	tests := []struct {
		name string
		in   ProfileInput
		kind error
	}{
		{"missing first name", ProfileInput{LastName: "Fahmy", Email: "a@example.com"}, ErrValidation},
		{"blank email", ProfileInput{FirstName: "Amira", LastName: "Fahmy", Email: "  "}, ErrValidation},
		{"malformed email", ProfileInput{FirstName: "Amira", LastName: "Fahmy", Email: "amira"}, ErrValidation},
		{"email taken", ProfileInput{FirstName: "Amira", LastName: "Fahmy", Email: "omar@example.com"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.UpdateProfile(ctx, amira.ID, tt.in)
			requireKind(t, err, tt.kind)
		})
	}

	_, err = f.profiles.GetProfile(ctx, 9999)
	requireKind(t, err, ErrNotFound)
	_, err = f.profiles.UpdateProfile(ctx, 9999, ProfileInput{FirstName: "A", LastName: "B", Email: "ab@example.com"})
	requireKind(t, err, ErrNotFound)

	stored, err = f.profiles.GetProfile(ctx, amira.ID)
	require.NoError(t, err)
	require.Equal(t, "amira.fahmy@example.com", stored.Email)
}

func TestPhones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amira := f.addCustomer(t, "amira")
	omar := f.addCustomer(t, "omar")

	mobile, err := f.profiles.AddPhone(ctx, amira.ID, PhoneInput{Number: " 010 1234 5678 "})
	require.NoError(t, err)
	require.True(t, mobile.IsPrimary)
	require.Equal(t, "Mobile", mobile.Type)
	require.Equal(t, "010 1234 5678", mobile.Number)

	work, err := f.profiles.AddPhone(ctx, amira.ID, PhoneInput{Number: "02 2345 6789", Type: "Work"})
	require.NoError(t, err)
	require.False(t, work.IsPrimary)

	theirs, err := f.profiles.AddPhone(ctx, omar.ID, PhoneInput{Number: "011 0000 0000"})
	require.NoError(t, err)
	require.True(t, theirs.IsPrimary)

	require.NoError(t, f.profiles.SetPrimaryPhone(ctx, amira.ID, work.ID))
	phones, err := f.profiles.ListPhones(ctx, amira.ID)
	require.NoError(t, err)
	require.Len(t, phones, 2)
	require.Equal(t, work.ID, phones[0].ID)
	require.True(t, phones[0].IsPrimary)
	require.False(t, phones[1].IsPrimary)

	requireKind(t, f.profiles.SetPrimaryPhone(ctx, amira.ID, theirs.ID), ErrNotFound)
	requireKind(t, f.profiles.DeletePhone(ctx, amira.ID, theirs.ID), ErrNotFound)
	others, err := f.profiles.ListPhones(ctx, omar.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	require.True(t, others[0].IsPrimary)

	require.NoError(t, f.profiles.DeletePhone(ctx, amira.ID, mobile.ID))
	requireKind(t, f.profiles.DeletePhone(ctx, amira.ID, mobile.ID), ErrNotFound)
	phones, err = f.profiles.ListPhones(ctx, amira.ID)
	require.NoError(t, err)
	require.Len(t, phones, 1)

	tests := []struct {
		name string
		in   PhoneInput
	}{
		{"missing number", PhoneInput{Number: "  "}},
		{"too long", PhoneInput{Number: "0123456789 0123456789 0123456789"}},
		{"unknown type", PhoneInput{Number: "010", Type: "Fax"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.AddPhone(ctx, amira.ID, tt.in)
			requireKind(t, err, ErrValidation)
		})
	}
}
