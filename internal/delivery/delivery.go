// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a serving entrypoint, started by main and stopped through the
// fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
