package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RollbackKeepsOutsideWrites(t *testing.T) {
	st := NewLocalStorage()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- st.Transaction(ctx, func(tx Storage) error {
			err := tx.CreateVehicle(ctx, &Vehicle{ID: "v-tx", Plate: "TX001AA", State: VehicleAvailable})
			close(started)
			<-release
			if err != nil {
				return err
			}
			return errors.New("boom")
		})
	}()
	<-started

	written := make(chan error, 1)
	go func() {
		written <- st.CreateClient(ctx, &Client{ID: "c-1", NationalID: "12345678", Classification: ClientProspect})
	}()

	select {
	case <-written:
		t.Fatal("write outside the transaction did not wait for it to finish")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	require.EqualError(t, <-txDone, "boom")
	require.NoError(t, <-written)

	c, err := st.FindClientByNationalID(ctx, "12345678")
	require.NoError(t, err, "client written during the rollback must survive")
	assert.Equal(t, "c-1", c.ID)

	_, err = st.FindVehicleByPlate(ctx, "TX001AA")
	assert.ErrorIs(t, err, ErrNotFound, "vehicle written inside the transaction must be rolled back")
}

func TestLocalStorage_NestedTransactionJoinsOuter(t *testing.T) {
	st := NewLocalStorage()
	ctx := context.Background()

	err := st.Transaction(ctx, func(tx Storage) error {
		return tx.Transaction(ctx, func(inner Storage) error {
			require.NoError(t, inner.CreateClient(ctx, &Client{ID: "c-2", NationalID: "87654321"}))
			return errors.New("inner failed")
		})
	})
	require.Error(t, err)

	_, err = st.FindClientByNationalID(ctx, "87654321")
	assert.ErrorIs(t, err, ErrNotFound)
}
