package submission

import "context"

// Usecase defines the form submission operations exposed to transports.
type Usecase interface {
	Submit(ctx context.Context, in SubmitRequest) (*SubmitResponse, error)
}
