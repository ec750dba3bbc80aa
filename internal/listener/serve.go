// SPDX-License-Identifier: MIT
package listener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	applog "wakeup/internal/log"
)

const shutdownTimeout = 2 * time.Second

// Serve runs the listener loop alongside HTTP servers. When the loop
// returns, for any reason, the servers are shut down. A server that fails
// to listen cancels the loop.
func Serve(ctx context.Context, run func(context.Context) error, servers ...*http.Server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return run(gctx)
	})

	for _, srv := range servers {
		g.Go(func() error {
			applog.Infof("Listener: HTTP server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
