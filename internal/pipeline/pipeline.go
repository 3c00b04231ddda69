// Package pipeline applies registered post-processing stages to an
// extraction result in deterministic order, honoring per-stage criticality.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/docsift/docsift/internal/extract"
)

// Run applies each stage in order to the result produced by the previous
// stage. A fatal stage failure aborts with a StageError; a best-effort
// failure is downgraded to a warning on the result and execution continues
// with the pre-stage result. Cancellation is observed between stages.
func Run(ctx context.Context, r *extract.Result, stages []extract.Stage, cfg extract.Config) (*extract.Result, error) {
	cur := r
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, mapCtxErr(err)
		}
		next, err := st.Processor.Apply(ctx, cur, cfg)
		if err != nil {
			if st.Criticality == extract.Fatal {
				return nil, &extract.StageError{Stage: st.Name, Err: err}
			}
			log.Warn().Err(err).Str("stage", st.Name).Msg("best-effort stage failed; continuing")
			cur = cur.WithWarning(fmt.Sprintf("stage %s: %v", st.Name, err))
			continue
		}
		if next == nil {
			// A stage returning nil without error is a contract violation;
			// treat it like a stage failure under the stage's own policy.
			err := fmt.Errorf("stage returned nil result")
			if st.Criticality == extract.Fatal {
				return nil, &extract.StageError{Stage: st.Name, Err: err}
			}
			cur = cur.WithWarning(fmt.Sprintf("stage %s: %v", st.Name, err))
			continue
		}
		cur = next
	}
	return cur, nil
}

func mapCtxErr(err error) error {
	if err == context.DeadlineExceeded {
		return extract.ErrTimeout
	}
	return extract.ErrCancelled
}
