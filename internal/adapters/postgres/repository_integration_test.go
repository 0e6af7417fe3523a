package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/migrations"
	pgclient "dreamsquare-service/pkg/postgres"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// newTestPool поднимает Postgres 16 в контейнере и применяет миграции.
// DREAMSQUARE_TEST_PG_DSN позволяет использовать уже запущенную базу.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("DREAMSQUARE_TEST_PG_DSN")
	if dsn == "" {
		container, err := tcpostgres.Run(ctx,
			"postgres:16",
			tcpostgres.WithDatabase("dreamsquare"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			tcpostgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := pgclient.NewClient(ctx, pgclient.Config{DatabaseURL: dsn, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := NewMigrator(pool, migrations.FS)
	require.NoError(t, err)
	_, err = migrator.Up(ctx)
	require.NoError(t, err)

	return pool
}

func TestPostgresRepositories(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	users, err := NewPostgresUserRepository(pool)
	require.NoError(t, err)
	properties, err := NewPostgresPropertyRepository(pool)
	require.NoError(t, err)
	offers, err := NewPostgresOfferRepository(pool)
	require.NoError(t, err)
	payments, err := NewPostgresPaymentRepository(pool)
	require.NoError(t, err)
	wishlist, err := NewPostgresWishlistRepository(pool)
	require.NoError(t, err)
	reviews, err := NewPostgresReviewRepository(pool)
	require.NoError(t, err)

	newProperty := func(t *testing.T, agent string) string {
		id, err := properties.Create(ctx, &domain.Property{
			Title:      "Flat",
			Location:   "Minsk",
			AgentEmail: agent,
			AgentName:  "Agent",
			MinPrice:   100000,
			MaxPrice:   150000,
			Status:     domain.PropertyPending,
			CreatedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
		return id
	}

	newOffer := func(t *testing.T, propertyID, buyer string) string {
		id, err := offers.Create(ctx, &domain.Offer{
			PropertyID:  propertyID,
			AgentEmail:  "agent@x.io",
			BuyerEmail:  buyer,
			OfferAmount: 120000,
			Status:      domain.OfferPending,
			CreatedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)
		return id
	}

	t.Run("user create is idempotent by email", func(t *testing.T) {
		created, err := users.Create(ctx, &domain.User{Email: "u1@x.io", Name: "U1", Role: domain.RoleUser, CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = users.Create(ctx, &domain.User{Email: "u1@x.io", Name: "Other", Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.False(t, created)

		u, err := users.FindByEmail(ctx, "u1@x.io")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, domain.RoleUser, u.Role)

		res, err := users.UpdateRole(ctx, u.ID, domain.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
		assert.Equal(t, int64(0), res.ModifiedCount)

		_, err = users.FindByID(ctx, "not-a-uuid")
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("property status is compare-and-set", func(t *testing.T) {
		id := newProperty(t, "cas@x.io")

		res, err := properties.UpdateStatus(ctx, id, domain.PropertyPending, domain.PropertyVerified)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.ModifiedCount)

		res, err = properties.UpdateStatus(ctx, id, domain.PropertyPending, domain.PropertyRejected)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.ModifiedCount)

		p, err := properties.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.PropertyVerified, p.Status)
		assert.Empty(t, p.Reviews)
	})

	t.Run("price range is checked by the table", func(t *testing.T) {
		id := newProperty(t, "range@x.io")

		inverted := 500000.0
		_, err := properties.Update(ctx, id, domain.PropertyUpdate{MinPrice: &inverted})
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

		negative := -5.0
		_, err = properties.Create(ctx, &domain.Property{Title: "Flat", AgentEmail: "range@x.io", MinPrice: negative, MaxPrice: negative, Status: domain.PropertyPending})
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

		p, err := properties.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 100000.0, p.MinPrice)
		assert.Equal(t, 150000.0, p.MaxPrice)
	})

	t.Run("accept rejects pending siblings", func(t *testing.T) {
		propertyID := newProperty(t, "agent@x.io")
		target := newOffer(t, propertyID, "b1@x.io")
		sibling1 := newOffer(t, propertyID, "b2@x.io")
		sibling2 := newOffer(t, propertyID, "b3@x.io")

		plan, err := offers.Accept(ctx, target)
		require.NoError(t, err)
		assert.True(t, plan.AcceptTarget)
		assert.ElementsMatch(t, []string{sibling1, sibling2}, plan.RejectOfferIDs)

		for id, want := range map[string]domain.OfferStatus{
			target:   domain.OfferAccepted,
			sibling1: domain.OfferRejected,
			sibling2: domain.OfferRejected,
		} {
			o, err := offers.FindByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, o.Status)
		}

		again, err := offers.Accept(ctx, target)
		require.NoError(t, err)
		assert.False(t, again.AcceptTarget)

		_, err = offers.Accept(ctx, sibling1)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("concurrent accepts leave one accepted offer", func(t *testing.T) {
		propertyID := newProperty(t, "agent@x.io")
		ids := []string{
			newOffer(t, propertyID, "c1@x.io"),
			newOffer(t, propertyID, "c2@x.io"),
			newOffer(t, propertyID, "c3@x.io"),
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, _ = offers.Accept(ctx, id)
			}(id)
		}
		wg.Wait()

		list, err := offers.ListByAgent(ctx, "agent@x.io")
		require.NoError(t, err)
		accepted := 0
		for _, o := range list {
			if o.PropertyID == propertyID && o.Status == domain.OfferAccepted {
				accepted++
			}
		}
		assert.Equal(t, 1, accepted)
	})

	t.Run("offer transition records transaction id", func(t *testing.T) {
		propertyID := newProperty(t, "agent@x.io")
		id := newOffer(t, propertyID, "d1@x.io")
		_, err := offers.Accept(ctx, id)
		require.NoError(t, err)

		ok, err := offers.TransitionStatus(ctx, id, domain.OfferAccepted, domain.OfferBought, "tx-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = offers.TransitionStatus(ctx, id, domain.OfferAccepted, domain.OfferBought, "tx-2")
		require.NoError(t, err)
		assert.False(t, ok)

		o, err := offers.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.OfferBought, o.Status)
		assert.Equal(t, "tx-1", o.TransactionID)
	})

	t.Run("duplicate transaction id is rejected", func(t *testing.T) {
		propertyID := newProperty(t, "pay@x.io")
		payment := &domain.Payment{
			OfferID: "o-1", PropertyID: propertyID, Email: "b@x.io", Amount: 120000,
			TransactionID: "pi_123", PaymentMethod: "card", Status: domain.PaymentStatusPaid, Date: time.Now().UTC(),
		}
		_, err := payments.Create(ctx, payment)
		require.NoError(t, err)

		_, err = payments.Create(ctx, payment)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

		list, err := payments.ListPaidByPropertyIDs(ctx, []string{propertyID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "pi_123", list[0].TransactionID)
	})

	t.Run("wishlist pair is unique", func(t *testing.T) {
		propertyID := newProperty(t, "wish@x.io")
		require.NoError(t, wishlist.Add(ctx, &domain.WishlistItem{UserEmail: "w@x.io", PropertyID: propertyID, CreatedAt: time.Now().UTC()}))

		err := wishlist.Add(ctx, &domain.WishlistItem{UserEmail: "w@x.io", PropertyID: propertyID, CreatedAt: time.Now().UTC()})
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

		removed, err := wishlist.Remove(ctx, "w@x.io", propertyID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})

	t.Run("reviews moderation", func(t *testing.T) {
		id, err := reviews.Create(ctx, &domain.Review{PropertyID: "p", UserID: "r@x.io", Name: "R", Text: "Nice", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)

		res, err := reviews.UpdateStatus(ctx, id, domain.ReviewApproved)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)

		mine, err := reviews.ListByUser(ctx, "r@x.io")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, domain.ReviewApproved, mine[0].Status)

		deleted, err := reviews.Delete(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("delete by agent email keeps other listings", func(t *testing.T) {
		newProperty(t, "fraud@x.io")
		newProperty(t, "fraud@x.io")
		keep := newProperty(t, "honest@x.io")

		deleted, err := properties.DeleteByAgentEmail(ctx, "fraud@x.io")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		p, err := properties.FindByID(ctx, keep)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})
}
