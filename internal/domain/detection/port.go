package detection

import "context"

// PreviewStore port (interface untuk penyimpanan preview sementara)
type PreviewStore interface {
	Put(ctx context.Context, filename, mediaType string, data []byte) (PreviewHandle, error)
	Open(ctx context.Context, id string) (Preview, error)
	Release(ctx context.Context, id string) error
	Check(ctx context.Context) error
}

// Random is the source the simulator draws outcomes from. *rand.Rand from
// math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}
