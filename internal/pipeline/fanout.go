package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/georepute/visibility-cli/internal/engine"
	"github.com/georepute/visibility-cli/internal/model"
)

// batchRunner fans query batches out to the engine panel: batches run
// strictly sequentially, engines within a batch run concurrently, and one
// engine's failure never delays or cancels the others.
type batchRunner struct {
	batchSize int
	timeout   time.Duration
}

func newBatchRunner(batchSize int, timeout time.Duration) *batchRunner {
	if batchSize <= 0 {
		batchSize = 10
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &batchRunner{batchSize: batchSize, timeout: timeout}
}

// engineBatch is one engine's settled outcome for one batch: either a full
// result slice (one element per query) or nil for total engine failure.
type engineBatch struct {
	results []model.EngineResult
	usage   model.TokenUsage
}

// run executes the whole fan-out and returns the accumulated per-query
// per-engine results plus per-engine run statistics.
func (r *batchRunner) run(ctx context.Context, queries []model.AggregatedQuery, domain string, engines []engine.Engine) (model.QueryEngineMap, map[string]*model.EngineStats) {
	results := make(model.QueryEngineMap)
	stats := make(map[string]*model.EngineStats, len(engines))
	for _, e := range engines {
		stats[e.Key()] = &model.EngineStats{}
	}

	for start := 0; start < len(queries); start += r.batchSize {
		end := min(start+r.batchSize, len(queries))
		batch := queries[start:end]
		r.runBatch(ctx, batch, domain, engines, results, stats)
	}

	return results, stats
}

// runBatch sends the identical prompt to every engine concurrently and merges
// the settled outcomes positionally by query index. Each goroutine writes only
// its own slot in outcomes, so the merge after Wait is the sole map writer.
func (r *batchRunner) runBatch(ctx context.Context, batch []model.AggregatedQuery, domain string, engines []engine.Engine, results model.QueryEngineMap, stats map[string]*model.EngineStats) {
	texts := make([]string, len(batch))
	for i, q := range batch {
		texts[i] = q.Text
	}
	prompt := BuildPrompt(texts, domain)

	outcomes := make([]engineBatch, len(engines))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range engines {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			completion, err := e.Complete(callCtx, prompt)
			if err != nil {
				zap.L().Warn("fanout: engine call failed",
					zap.String("engine", e.Key()),
					zap.Int("batch_size", len(batch)),
					zap.Error(err),
				)
				return nil // isolation: never abort the batch
			}

			parsed := ParseEngineResults(completion.Text, len(batch))
			if parsed == nil {
				zap.L().Warn("fanout: unparsable engine reply",
					zap.String("engine", e.Key()),
					zap.Int("reply_len", len(completion.Text)),
				)
				outcomes[i] = engineBatch{usage: completion.Usage}
				return nil
			}

			outcomes[i] = engineBatch{results: parsed, usage: completion.Usage}
			return nil
		})
	}
	_ = g.Wait() // goroutines always return nil; Wait is the collection barrier

	for i, e := range engines {
		st := stats[e.Key()]
		st.Calls++
		st.Usage.Add(outcomes[i].usage)

		if outcomes[i].results == nil {
			st.Failures++
			continue
		}
		for qi, res := range outcomes[i].results {
			results.Add(batch[qi].Text, e.Key(), res)
			if res.Mentioned {
				st.Mentions++
			}
		}
	}
}

// enginesUsed returns the sorted keys of engines that produced at least one
// successfully parsed batch.
func enginesUsed(engines []engine.Engine, stats map[string]*model.EngineStats) []string {
	used := make([]string, 0, len(engines))
	for _, e := range engines { // already sorted by key
		st := stats[e.Key()]
		if st != nil && st.Calls > st.Failures {
			used = append(used, e.Key())
		}
	}
	return used
}
