//go:build integration

package postgres_test

import (
	"context"
	"flag"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freighthub-backend/internal/config"
	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/storage"
)

// Run with: go test -tags integration ./internal/repository/postgres/ -config ../../../config/config.integration.yaml
var configPath = flag.String("config", "../../../config/config.integration.yaml", "path to config file")

func openBackend(t *testing.T) *storage.Backend {
	t.Helper()
	cfg, err := config.Load(*configPath)
	if err != nil {
		t.Fatalf("failed to load config from %s: %v", *configPath, err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Skipf("integration tests need the postgres driver, got %q", cfg.Database.Driver)
	}

	var backend *storage.Backend
	for i := 0; i < 10; i++ {
		backend, err = storage.Open(context.Background(), cfg)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	return backend
}

func seedOpenRequest(t *testing.T, b *storage.Backend) *domain.QuoteRequest {
	t.Helper()
	stackable := true
	in := domain.QuoteRequestInput{
		PickupLocation:   "Chennai Port",
		DeliveryLocation: "Bengaluru",
		GoodsCategory:    domain.GoodsElectronics,
		GoodsType:        "Fragile",
		PackagingType:    "Pallets",
		TotalQuantity:    4,
		IsStackable:      &stackable,
		Dimensions:       domain.Dimensions{Length: 120, Width: 80, Height: 100},
		VolumetricWeight: 160,
		PickupDate:       time.Now().Add(72 * time.Hour),
		ShipmentType:     domain.ShipmentRoad,
		Contact:          domain.Contact{MobileNumber: "9840012345", Email: "dispatch@acme.in"},
	}
	require.NoError(t, in.Validate())
	req := domain.NewQuoteRequest(uuid.New(), in, time.Now().UTC())
	require.NoError(t, b.Requests.Create(context.Background(), req))
	return req
}

func TestIntegration_ConcurrentAccept(t *testing.T) {
	b := openBackend(t)
	ctx := context.Background()
	req := seedOpenRequest(t, b)

	var ids []uuid.UUID
	for i := 0; i < 6; i++ {
		resp := domain.NewQuoteResponse(req.ID, uuid.New(), domain.QuoteResponseInput{
			QuoteAmount: float64(20000 + i*500),
			Currency:    domain.CurrencyINR,
			Validity:    time.Now().Add(7 * 24 * time.Hour),
		}, time.Now().UTC())
		require.NoError(t, b.Responses.Create(ctx, resp))
		ids = append(ids, resp.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := b.Responses.Accept(ctx, id, time.Now().UTC())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case domain.KindOf(err) == domain.KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected accept error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, len(ids)-1, conflicts)

	got, err := b.Requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteRequestStatusClosed, got.Status)

	late := domain.NewQuoteResponse(req.ID, uuid.New(), domain.QuoteResponseInput{
		QuoteAmount: 15000,
		Currency:    domain.CurrencyINR,
		Validity:    time.Now().Add(24 * time.Hour),
	}, time.Now().UTC())
	assert.ErrorIs(t, b.Responses.Create(ctx, late), domain.ErrConflict)
}

func TestIntegration_CommunityJoinRequest(t *testing.T) {
	b := openBackend(t)
	ctx := context.Background()

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleCompany}
	carrier := domain.Actor{ID: uuid.New(), Role: domain.RoleTransporter}
	c := domain.NewCommunity(admin, domain.CommunityInput{Name: "Southern Corridor", Rules: []string{"No spam"}}, time.Now().UTC())
	require.NoError(t, b.Communities.Create(ctx, c))

	var jr *domain.JoinRequest
	_, err := b.Communities.Mutate(ctx, c.ID, func(c *domain.Community) error {
		var err error
		jr, err = c.RequestJoin(carrier, domain.JoinRequestInput{Name: "Ravi", Role: domain.RoleTransporter, Reason: "Chennai routes"}, time.Now().UTC())
		return err
	})
	require.NoError(t, err)

	updated, err := b.Communities.Mutate(ctx, c.ID, func(c *domain.Community) error {
		_, err := c.ProcessJoinRequest(admin, jr.ID, domain.JoinActionApprove, time.Now().UTC())
		return err
	})
	require.NoError(t, err)
	assert.True(t, updated.IsMember(carrier.ID))

	reloaded, err := b.Communities.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsMember(carrier.ID))
	assert.Equal(t, []string{"No spam"}, reloaded.Rules)
	require.Len(t, reloaded.JoinRequests, 1)
	assert.Equal(t, domain.JoinRequestStatusApproved, reloaded.JoinRequests[0].Status)
	require.NotNil(t, reloaded.JoinRequests[0].ReviewedBy)
	assert.Equal(t, admin.ID, *reloaded.JoinRequests[0].ReviewedBy)
}
