package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shopcore/internal/cart"
	"github.com/noah-isme/shopcore/internal/lock"
	"github.com/noah-isme/shopcore/internal/quantity"
	"github.com/noah-isme/shopcore/internal/stock"
)

func testLease(t *testing.T) lock.Lease {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Lease{Client: client, Retry: 5 * time.Millisecond}
}

func TestLeaseSerializesHolders(t *testing.T) {
	lease := testLease(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := lock.CartKey("cart-1", "shirt-m")

	var mu sync.Mutex
	var order []string
	firstHolding := make(chan struct{})
	releaseFirst := make(chan struct{})

	go func() {
		_ = lease.Do(ctx, key, 100*time.Millisecond, func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstHolding)
			<-releaseFirst
			return nil
		})
	}()

	<-firstHolding
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- lease.Do(ctx, key, 100*time.Millisecond, func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()

	close(releaseFirst)
	require.NoError(t, <-secondDone)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestLeaseGuardsCartCommit(t *testing.T) {
	lease := testLease(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	core := &quantity.Core{Stock: stock.NewStatic(map[string]decimal.Decimal{"shirt-m": decimal.NewFromInt(5)})}
	c := cart.New(core, "PLN")
	key := lock.CartKey(c.ID, "shirt-m")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lease.Do(ctx, key, time.Second, func(ctx context.Context) error {
				_, err := c.AddQuantity(ctx, "shirt-m", decimal.NewFromInt(1), false)
				return err
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.True(t, c.Quantity("shirt-m").Equal(decimal.NewFromInt(5)))
}

func TestLeaseAcquisitionHonoursContext(t *testing.T) {
	lease := testLease(t)
	key := lock.CartKey("cart-2", "mug")

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = lease.Do(context.Background(), key, time.Second, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := lease.Do(ctx, key, time.Second, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
