package usecase

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	calls    int
	amount   int64
	currency string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64, currency string) (*domain.PaymentIntent, error) {
	g.calls++
	g.amount = amount
	g.currency = currency
	return &domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: currency}, nil
}

type fakeDirectory struct {
	deleted []string
	err     error
}

func (d *fakeDirectory) DeleteUserByEmail(_ context.Context, email string) error {
	d.deleted = append(d.deleted, email)
	return d.err
}

func paymentRecord(amount string) domain.PaymentRecord {
	return domain.PaymentRecord{
		OfferID:       "offer-1",
		PropertyID:    "property-1",
		Email:         "buyer@example.com",
		Amount:        amount,
		TransactionID: "pi_" + amount,
		PaymentMethod: "card",
	}
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("valid payment is stored as paid", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{}
		uc := NewRecordPaymentUseCase(memPayments{s}, events, nil)

		id, err := uc.Execute(ctx, paymentRecord("1250.50"))
		require.NoError(t, err)
		stored := s.payments[id]
		assert.Equal(t, domain.PaymentStatusPaid, stored.Status)
		assert.InDelta(t, 1250.50, stored.Amount, 0.0001)
		assert.False(t, stored.Date.IsZero())
		require.Len(t, events.published, 1)
		assert.Equal(t, id, events.published[0].PaymentID)
	})

	t.Run("bad amounts are rejected", func(t *testing.T) {
		s := newMemStore()
		uc := NewRecordPaymentUseCase(memPayments{s}, nil, nil)

		for _, amount := range []string{"abc", "0", "-5", "NaN", "Inf"} {
			_, err := uc.Execute(ctx, paymentRecord(amount))
			require.ErrorIs(t, err, domain.ErrInvalidArgument, "amount %q", amount)
		}
		assert.Empty(t, s.payments)
	})

	t.Run("missing fields", func(t *testing.T) {
		uc := NewRecordPaymentUseCase(memPayments{newMemStore()}, nil, nil)
		_, err := uc.Execute(ctx, domain.PaymentRecord{Amount: "10"})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "transactionId")
	})

	t.Run("duplicate transaction id", func(t *testing.T) {
		s := newMemStore()
		uc := NewRecordPaymentUseCase(memPayments{s}, nil, nil)

		_, err := uc.Execute(ctx, paymentRecord("10"))
		require.NoError(t, err)
		_, err = uc.Execute(ctx, paymentRecord("10"))
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{}
	uc := NewCreatePaymentIntentUseCase(gateway, "")

	_, err := uc.Execute(ctx, 49)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Zero(t, gateway.calls)

	intent, err := uc.Execute(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "usd", gateway.currency)

	// без ключа шлюз не создается
	_, err = NewCreatePaymentIntentUseCase(nil, "usd").Execute(ctx, 100)
	require.Error(t, err)
}

func TestListAgentPayments(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	mine := seedProperty(t, s, "agent@example.com", 1, 2)
	other := seedProperty(t, s, "other@example.com", 1, 2)

	record := NewRecordPaymentUseCase(memPayments{s}, nil, nil)
	r1 := paymentRecord("10")
	r1.PropertyID = mine
	_, err := record.Execute(ctx, r1)
	require.NoError(t, err)
	r2 := paymentRecord("20")
	r2.PropertyID = other
	_, err = record.Execute(ctx, r2)
	require.NoError(t, err)

	uc := NewListAgentPaymentsUseCase(memProperties{s}, memPayments{s})
	payments, err := uc.Execute(ctx, "agent@example.com")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, mine, payments[0].PropertyID)

	none, err := uc.Execute(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	propertyID := seedProperty(t, s, "agent@example.com", 1, 2)

	add := NewAddToWishlistUseCase(memWishlist{s})
	get := NewGetWishlistUseCase(memWishlist{s}, memProperties{s})
	remove := NewRemoveFromWishlistUseCase(memWishlist{s})

	empty, err := get.Execute(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	require.NoError(t, add.Execute(ctx, "buyer@example.com", propertyID))
	err = add.Execute(ctx, "buyer@example.com", propertyID)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "Property already in wishlist")

	require.ErrorIs(t, add.Execute(ctx, "", propertyID), domain.ErrInvalidArgument)

	items, err := get.Execute(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, propertyID, items[0].ID)

	require.NoError(t, remove.Execute(ctx, "buyer@example.com", propertyID))
	require.ErrorIs(t, remove.Execute(ctx, "buyer@example.com", propertyID), domain.ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	register := NewRegisterUserUseCase(memUsers{s})
	created, err := register.Execute(ctx, domain.User{Email: "new@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = register.Execute(ctx, domain.User{Email: "new@example.com"})
	require.NoError(t, err)
	assert.False(t, created)

	role, err := NewGetUserRoleUseCase(memUsers{s}).Execute(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)

	_, err = NewGetUserRoleUseCase(memUsers{s}).Execute(ctx, "ghost@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	user, err := memUsers{s}.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)

	setRole := NewSetUserRoleUseCase(memUsers{s})
	_, err = setRole.Execute(ctx, user.ID, domain.RoleFraud)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	res, err := setRole.Execute(ctx, user.ID, domain.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	directory := &fakeDirectory{err: errStoreDown}
	del := NewDeleteUserUseCase(memUsers{s}, directory)
	require.NoError(t, del.Execute(ctx, user.ID, "new@example.com"))
	assert.Equal(t, []string{"new@example.com"}, directory.deleted)
	require.ErrorIs(t, del.Execute(ctx, user.ID, ""), domain.ErrNotFound)
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	review, err := NewCreateReviewUseCase(memReviews{s}).Execute(ctx, domain.Review{
		PropertyID: "property-1",
		UserID:     "uid-1",
		Name:       "Buyer",
		Text:       "Great view",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)

	mine, err := NewListReviewsUseCase(memReviews{s}).Execute(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	status := NewChangeReviewStatusUseCase(memReviews{s})
	require.ErrorIs(t, status.Execute(ctx, review.ID, "spam"), domain.ErrInvalidArgument)
	require.NoError(t, status.Execute(ctx, review.ID, domain.ReviewApproved))
	assert.Equal(t, domain.ReviewApproved, s.reviews[review.ID].Status)

	del := NewDeleteReviewUseCase(memReviews{s})
	require.NoError(t, del.Execute(ctx, review.ID))
	require.ErrorIs(t, del.Execute(ctx, review.ID), domain.ErrNotFound)
}
