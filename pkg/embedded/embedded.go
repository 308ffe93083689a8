// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains all files embedded in the Go binary:
//   - strategy/ - default raise-first-in strategy table, used when no
//     TRAINER_STRATEGY_PATH is configured
//
//go:embed strategy
var Files embed.FS

// DefaultStrategyPath is the embedded path of the bundled strategy table.
const DefaultStrategyPath = "strategy/rfi_9max_ante_stack50.json"
