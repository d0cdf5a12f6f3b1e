package grid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errMissingUpdater = errors.New("grid: dashboard updater not configured")

type dashboardUpdater interface {
	UpdateDashboard(ctx context.Context, dashboard Dashboard) (UpdateResponse, error)
}

// MutationClient is an UpdateService that runs each update on its own
// goroutine and exposes an in-flight flag.
type MutationClient struct {
	updater  dashboardUpdater
	inflight atomic.Int32
	wg       sync.WaitGroup
}

// NewMutationClient wraps updater (usually *Service).
func NewMutationClient(updater dashboardUpdater) *MutationClient {
	return &MutationClient{updater: updater}
}

var _ UpdateService = (*MutationClient)(nil)

// Mutate implements UpdateService. InFlight reports true from the moment
// Mutate is called until just before a callback runs.
func (c *MutationClient) Mutate(ctx context.Context, dashboard Dashboard, callbacks MutationCallbacks) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.inflight.Add(1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		var (
			resp UpdateResponse
			err  error
		)
		if c.updater == nil {
			err = errMissingUpdater
		} else {
			resp, err = c.updater.UpdateDashboard(ctx, dashboard)
		}
		c.inflight.Add(-1)
		if err != nil {
			if callbacks.OnError != nil {
				callbacks.OnError(err)
			}
			return
		}
		if callbacks.OnSuccess != nil {
			callbacks.OnSuccess(resp)
		}
	}()
}

// InFlight implements UpdateService.
func (c *MutationClient) InFlight() bool {
	return c.inflight.Load() > 0
}

// Wait blocks until every issued mutation has completed its callback.
func (c *MutationClient) Wait() {
	c.wg.Wait()
}
