package browser_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/browser/fake"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

func newTestPool(t *testing.T, capacity int) (*browser.Pool, *fake.Engine) {
	t.Helper()

	engine, err := fake.NewEngine(fake.EngineConfig{})
	require.NoError(t, err)

	pool, err := browser.NewPool(context.Background(), browser.PoolConfig{
		Engine:   engine,
		Capacity: capacity,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	return pool, engine
}

func TestNewPool(t *testing.T) {
	tests := map[string]struct {
		cfg    func() browser.PoolConfig
		expErr bool
	}{
		"Valid config": {
			cfg: func() browser.PoolConfig {
				engine, _ := fake.NewEngine(fake.EngineConfig{})
				return browser.PoolConfig{Engine: engine, Capacity: 3}
			},
		},

		"Missing engine returns error": {
			cfg:    func() browser.PoolConfig { return browser.PoolConfig{Capacity: 3} },
			expErr: true,
		},

		"Zero capacity returns error": {
			cfg: func() browser.PoolConfig {
				engine, _ := fake.NewEngine(fake.EngineConfig{})
				return browser.PoolConfig{Engine: engine}
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pool, err := browser.NewPool(context.Background(), tt.cfg())

			if tt.expErr {
				require.Error(t, err)
				assert.Nil(t, pool)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, pool)
			}
		})
	}
}

func TestPoolCapacity(t *testing.T) {
	ctx := context.Background()
	pool, engine := newTestPool(t, 2)

	// The full capacity can be leased.
	p1, err := pool.TryAcquire(ctx, nil)
	require.NoError(t, err)
	p2, err := pool.TryAcquire(ctx, nil)
	require.NoError(t, err)

	// One past capacity fails without blocking.
	_, err = pool.TryAcquire(ctx, nil)
	assert.ErrorIs(t, err, model.ErrSessionUnavailable)

	// Releasing frees a slot and closes the page.
	pool.Release(p1)
	assert.True(t, p1.(*fake.Page).Closed())

	p3, err := pool.TryAcquire(ctx, nil)
	require.NoError(t, err)

	pool.Release(p2)
	pool.Release(p3)

	assert.Equal(t, 3, engine.OpenedPages())
}

func TestPoolAcquireBlocksUntilRelease(t *testing.T) {
	ctx := context.Background()
	pool, _ := newTestPool(t, 1)

	p1, err := pool.Acquire(ctx, nil)
	require.NoError(t, err)

	acquired := make(chan browser.Page)
	go func() {
		p, err := pool.Acquire(ctx, nil)
		if err == nil {
			acquired <- p
		}
	}()

	// The second acquire stays blocked while the slot is held.
	select {
	case <-acquired:
		t.Fatal("acquire should have blocked while pool was full")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(p1)

	select {
	case p := <-acquired:
		pool.Release(p)
	case <-time.After(2 * time.Second):
		t.Fatal("acquire should have proceeded after release")
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	pool, _ := newTestPool(t, 1)

	p1, err := pool.Acquire(context.Background(), nil)
	require.NoError(t, err)
	defer pool.Release(p1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx, nil)
	assert.ErrorIs(t, err, model.ErrSessionUnavailable)
}

func TestPoolPageFailureReturnsSlot(t *testing.T) {
	ctx := context.Background()

	fail := true
	engine, err := fake.NewEngine(fake.EngineConfig{
		NewPage: func(ctx context.Context, opts browser.PageOptions) (browser.Page, error) {
			if fail {
				return nil, fmt.Errorf("browser crashed")
			}
			return fake.NewPage(), nil
		},
	})
	require.NoError(t, err)

	pool, err := browser.NewPool(ctx, browser.PoolConfig{Engine: engine, Capacity: 1})
	require.NoError(t, err)
	defer pool.Shutdown(ctx)

	// A failed page open must not leak the slot.
	_, err = pool.TryAcquire(ctx, nil)
	require.ErrorIs(t, err, model.ErrSessionUnavailable)

	fail = false
	page, err := pool.TryAcquire(ctx, nil)
	require.NoError(t, err)
	pool.Release(page)
}
