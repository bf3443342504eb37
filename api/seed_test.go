package api_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/api"
	"github.com/ondahr/vacation-engine/store/sqlite"
)

func TestSeed_LoadsExplorableDataset(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := api.NewHandler(store, log)
	ctx := context.Background()

	require.NoError(t, h.Seed(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 5)

	balances, err := store.ListBalances(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, balances)

	bookings, err := store.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 5, bookings[0].CashOutDays)

	// Seeding again resets rather than duplicating.
	require.NoError(t, h.Seed(ctx))
	employees, err = store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 5)
}
