package detection

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/logger"
)

// StagedImage is an accepted upload together with its preview handle. The
// handle is released exactly once, whichever path gets there first.
type StagedImage struct {
	Filename string
	Handle   domain.PreviewHandle

	store domain.PreviewStore
	once  sync.Once
	err   error
}

// Release frees the preview handle. Later calls return the first result.
func (s *StagedImage) Release(ctx context.Context) error {
	s.once.Do(func() {
		s.err = s.store.Release(ctx, s.Handle.ID)
	})
	return s.err
}

// Stager turns candidate uploads into staged images.
type Stager struct {
	Store domain.PreviewStore
}

// Stage accepts candidate when its declared media type is an image. Anything
// else is silently ignored and (nil, nil) is returned. On acceptance the
// current image, if any, is released before the new preview is allocated.
func (st *Stager) Stage(ctx context.Context, current *StagedImage, candidate domain.Upload) (*StagedImage, error) {
	if !candidate.IsImage() {
		return nil, nil
	}

	if current != nil {
		if err := current.Release(ctx); err != nil {
			logger.Warn().Err(err).Str("preview", current.Handle.ID).Msg("release previous preview")
		}
	}

	h, err := st.Store.Put(ctx, candidate.Filename, candidate.MediaType, candidate.Data)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", candidate.Filename, err)
	}
	return &StagedImage{Filename: candidate.Filename, Handle: h, store: st.Store}, nil
}
