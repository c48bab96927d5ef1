// Package lifecycle holds shared timing constants for fx start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of servers and pools.
const DefaultTimeout = 15 * time.Second
