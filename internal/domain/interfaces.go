package domain

import "context"

// Execution defines the order-execution collaborator.
type Execution interface {
	ExecuteOrder(ctx context.Context, order Order) error
}

// BarSource defines a host-side gateway feeding bar samples into the engine.
type BarSource interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}
