// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"time"
)

// DefaultWatchInterval is the room-view refresh cadence.
const DefaultWatchInterval = 5 * time.Second

// Watch refreshes vote status and results on a fixed interval until ctx is
// cancelled. This is the system's only recurring background operation; the
// ticker is released on return, so tearing down the owning view by
// cancelling ctx leaves no dangling timers.
func (t *Tracker) Watch(ctx context.Context, roomID string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	// Prime the view before the first tick.
	t.CheckVoteStatus(ctx, roomID)
	t.VoteResults(ctx, roomID)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.CheckVoteStatus(ctx, roomID)
			t.VoteResults(ctx, roomID)
		}
	}
}
