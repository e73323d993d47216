package interfaces

import (
	"context"

	"github.com/m-mizutani/cutrelease/pkg/domain/model"
)

// ReleaseUseCase runs the release workflow for one ReleaseRun
type ReleaseUseCase interface {
	// Release validates, guards, merges, rewrites versions, tags, merges back and optionally
	// pushes. On failure after the first mutation it rolls the repository back.
	Release(ctx context.Context, run *model.ReleaseRun) error
}
