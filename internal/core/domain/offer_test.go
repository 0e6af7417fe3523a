package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OfferStatus
		want     bool
	}{
		{OfferPending, OfferAccepted, true},
		{OfferPending, OfferRejected, true},
		{OfferPending, OfferBought, false},
		{OfferAccepted, OfferBought, true},
		{OfferAccepted, OfferRejected, true},
		{OfferRejected, OfferAccepted, false},
		{OfferBought, OfferRejected, false},
		{OfferBought, OfferAccepted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPlanAccept_RejectsPendingSiblings(t *testing.T) {
	target := &Offer{ID: "a", PropertyID: "p", Status: OfferPending}
	siblings := []Offer{
		{ID: "a", PropertyID: "p", Status: OfferPending},
		{ID: "b", PropertyID: "p", Status: OfferPending},
		{ID: "c", PropertyID: "p", Status: OfferRejected},
		{ID: "d", PropertyID: "p", Status: OfferPending},
	}

	plan, err := PlanAccept(target, siblings)
	require.NoError(t, err)
	assert.True(t, plan.AcceptTarget)
	assert.Equal(t, []string{"b", "d"}, plan.RejectOfferIDs)
}

func TestPlanAccept_NoSiblings(t *testing.T) {
	plan, err := PlanAccept(&Offer{ID: "a", Status: OfferPending}, nil)
	require.NoError(t, err)
	assert.True(t, plan.AcceptTarget)
	assert.Empty(t, plan.RejectOfferIDs)
}

func TestPlanAccept_AlreadyAcceptedIsNoop(t *testing.T) {
	plan, err := PlanAccept(&Offer{ID: "a", Status: OfferAccepted}, []Offer{{ID: "b", Status: OfferRejected}})
	require.NoError(t, err)
	assert.False(t, plan.AcceptTarget)
	assert.Empty(t, plan.RejectOfferIDs)
}

func TestPlanAccept_Conflicts(t *testing.T) {
	_, err := PlanAccept(&Offer{ID: "a", Status: OfferRejected}, nil)
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = PlanAccept(&Offer{ID: "a", Status: OfferBought}, nil)
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = PlanAccept(&Offer{ID: "a", Status: OfferPending}, []Offer{{ID: "b", Status: OfferAccepted}})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestOfferSubmission_MissingFields(t *testing.T) {
	s := OfferSubmission{PropertyID: "p", Title: "t", BuyerEmail: "b@x.io"}
	assert.ElementsMatch(t,
		[]string{"location", "agentName", "buyerName", "buyingDate", "offerAmount"},
		s.MissingFields())
}
