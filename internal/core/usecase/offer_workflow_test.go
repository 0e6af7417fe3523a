package usecase

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProperty(t *testing.T, s *memStore, agentEmail string, minPrice, maxPrice float64) string {
	t.Helper()
	id, err := memProperties{s}.Create(context.Background(), &domain.Property{
		Title:      "Lake house",
		Location:   "Dhaka",
		AgentName:  "Agent",
		AgentEmail: agentEmail,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Status:     domain.PropertyVerified,
		Image:      "https://img.example/lake.jpg",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	return id
}

func seedOffer(t *testing.T, s *memStore, propertyID string, status domain.OfferStatus) string {
	t.Helper()
	id, err := memOffers{s}.Create(context.Background(), &domain.Offer{
		PropertyID:  propertyID,
		AgentEmail:  "agent@example.com",
		BuyerEmail:  "buyer@example.com",
		OfferAmount: 120000,
		Status:      status,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return id
}

func submission(propertyID string, amount float64) domain.OfferSubmission {
	return domain.OfferSubmission{
		PropertyID:  propertyID,
		Title:       "Lake house",
		Location:    "Dhaka",
		AgentName:   "Agent",
		OfferAmount: amount,
		BuyerEmail:  "buyer@example.com",
		BuyerName:   "Buyer",
		BuyingDate:  "2026-01-10",
	}
}

func TestSubmitOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("amount inside range creates pending offer", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{}
		propertyID := seedProperty(t, s, "agent@example.com", 100000, 150000)
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, events, events)

		offer, err := uc.Execute(ctx, submission(propertyID, 120000))
		require.NoError(t, err)
		assert.NotEmpty(t, offer.ID)
		assert.Equal(t, domain.OfferPending, offer.Status)
		assert.Equal(t, "agent@example.com", offer.AgentEmail)

		require.Len(t, events.published, 1)
		assert.Equal(t, domain.EventOfferSubmitted, events.published[0].Type)
		assert.Len(t, events.notified, 1)
	})

	t.Run("amount outside range is rejected", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 100000, 150000)
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, nil, nil)

		_, err := uc.Execute(ctx, submission(propertyID, 90000))
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "Offer must be between 100000 and 150000")
		assert.Empty(t, s.offers)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 100000, 150000)
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, nil, nil)

		_, err := uc.Execute(ctx, submission(propertyID, 100000))
		require.NoError(t, err)
		_, err = uc.Execute(ctx, submission(propertyID, 150000))
		require.NoError(t, err)
	})

	t.Run("unknown property", func(t *testing.T) {
		s := newMemStore()
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, nil, nil)

		_, err := uc.Execute(ctx, submission("missing", 120000))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newMemStore()
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, nil, nil)

		_, err := uc.Execute(ctx, domain.OfferSubmission{PropertyID: "x"})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "buyerEmail")
	})

	t.Run("publish failure does not fail the offer", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{publishErr: errors.New("broker down")}
		propertyID := seedProperty(t, s, "agent@example.com", 100000, 150000)
		uc := NewSubmitOfferUseCase(memOffers{s}, memProperties{s}, events, events)

		_, err := uc.Execute(ctx, submission(propertyID, 120000))
		require.NoError(t, err)
		assert.Len(t, s.offers, 1)
	})
}

func TestAcceptOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("single offer", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferPending)
		uc := NewAcceptOfferUseCase(memOffers{s}, nil, nil)

		plan, err := uc.Execute(ctx, offerID)
		require.NoError(t, err)
		assert.True(t, plan.AcceptTarget)
		assert.Empty(t, plan.RejectOfferIDs)
		assert.Equal(t, domain.OfferAccepted, s.offers[offerID].Status)
	})

	t.Run("siblings on the same property are rejected", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{}
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		otherPropertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		target := seedOffer(t, s, propertyID, domain.OfferPending)
		sibling1 := seedOffer(t, s, propertyID, domain.OfferPending)
		sibling2 := seedOffer(t, s, propertyID, domain.OfferPending)
		alreadyRejected := seedOffer(t, s, propertyID, domain.OfferRejected)
		unrelated := seedOffer(t, s, otherPropertyID, domain.OfferPending)
		uc := NewAcceptOfferUseCase(memOffers{s}, events, events)

		plan, err := uc.Execute(ctx, target)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{sibling1, sibling2}, plan.RejectOfferIDs)

		assert.Equal(t, domain.OfferAccepted, s.offers[target].Status)
		assert.Equal(t, domain.OfferRejected, s.offers[sibling1].Status)
		assert.Equal(t, domain.OfferRejected, s.offers[sibling2].Status)
		assert.Equal(t, domain.OfferRejected, s.offers[alreadyRejected].Status)
		assert.Equal(t, domain.OfferPending, s.offers[unrelated].Status)

		require.Len(t, events.published, 1)
		assert.Equal(t, domain.EventOfferAccepted, events.published[0].Type)
	})

	t.Run("at most one accepted offer per property", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		first := seedOffer(t, s, propertyID, domain.OfferPending)
		uc := NewAcceptOfferUseCase(memOffers{s}, nil, nil)

		_, err := uc.Execute(ctx, first)
		require.NoError(t, err)

		late := seedOffer(t, s, propertyID, domain.OfferPending)
		_, err = uc.Execute(ctx, late)
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.OfferPending, s.offers[late].Status)
	})

	t.Run("accepting twice is idempotent", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{}
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferPending)
		uc := NewAcceptOfferUseCase(memOffers{s}, events, nil)

		_, err := uc.Execute(ctx, offerID)
		require.NoError(t, err)
		plan, err := uc.Execute(ctx, offerID)
		require.NoError(t, err)
		assert.False(t, plan.AcceptTarget)
		assert.Len(t, events.published, 1)
	})

	t.Run("rejected offer cannot be accepted", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferRejected)
		uc := NewAcceptOfferUseCase(memOffers{s}, nil, nil)

		_, err := uc.Execute(ctx, offerID)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown offer", func(t *testing.T) {
		uc := NewAcceptOfferUseCase(memOffers{newMemStore()}, nil, nil)
		_, err := uc.Execute(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRejectOffer(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
	pending := seedOffer(t, s, propertyID, domain.OfferPending)
	bought := seedOffer(t, s, propertyID, domain.OfferBought)
	uc := NewRejectOfferUseCase(memOffers{s}, nil, nil)

	require.NoError(t, uc.Execute(ctx, pending))
	assert.Equal(t, domain.OfferRejected, s.offers[pending].Status)

	// повторное отклонение ничего не меняет
	require.NoError(t, uc.Execute(ctx, pending))

	err := uc.Execute(ctx, bought)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.OfferBought, s.offers[bought].Status)

	require.ErrorIs(t, uc.Execute(ctx, "missing"), domain.ErrNotFound)

	// агент может отозвать принятое предложение до оплаты
	accepted := seedOffer(t, s, propertyID, domain.OfferAccepted)
	require.NoError(t, uc.Execute(ctx, accepted))
	assert.Equal(t, domain.OfferRejected, s.offers[accepted].Status)
	err = NewMarkOfferBoughtUseCase(memOffers{s}, nil, nil).Execute(ctx, accepted, "pi_late")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.OfferRejected, s.offers[accepted].Status)
}

func TestMarkOfferBought(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted offer with transaction id", func(t *testing.T) {
		s := newMemStore()
		events := &recordingEvents{}
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferAccepted)
		uc := NewMarkOfferBoughtUseCase(memOffers{s}, events, events)

		require.NoError(t, uc.Execute(ctx, offerID, "pi_123"))
		assert.Equal(t, domain.OfferBought, s.offers[offerID].Status)
		assert.Equal(t, "pi_123", s.offers[offerID].TransactionID)
		require.Len(t, events.published, 1)
		assert.Equal(t, domain.EventOfferBought, events.published[0].Type)
	})

	t.Run("transaction id is required", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferAccepted)
		uc := NewMarkOfferBoughtUseCase(memOffers{s}, nil, nil)

		err := uc.Execute(ctx, offerID, "")
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, domain.OfferAccepted, s.offers[offerID].Status)
	})

	t.Run("second call reports not found", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferAccepted)
		uc := NewMarkOfferBoughtUseCase(memOffers{s}, nil, nil)

		require.NoError(t, uc.Execute(ctx, offerID, "pi_1"))
		err := uc.Execute(ctx, offerID, "pi_2")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "pi_1", s.offers[offerID].TransactionID)
	})

	t.Run("pending offer cannot be bought", func(t *testing.T) {
		s := newMemStore()
		propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
		offerID := seedOffer(t, s, propertyID, domain.OfferPending)
		uc := NewMarkOfferBoughtUseCase(memOffers{s}, nil, nil)

		err := uc.Execute(ctx, offerID, "pi_1")
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.OfferPending, s.offers[offerID].Status)
	})
}

func TestListBuyerOffersMergesImage(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	propertyID := seedProperty(t, s, "agent@example.com", 1, 2)
	seedOffer(t, s, propertyID, domain.OfferPending)
	uc := NewListBuyerOffersUseCase(memOffers{s}, memProperties{s})

	offers, err := uc.Execute(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "https://img.example/lake.jpg", offers[0].Image)

	_, err = uc.Execute(ctx, "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
