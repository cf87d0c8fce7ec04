package dataset

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
	trajlog "github.com/YuminosukeSato/trajgo/pkg/log"
)

// Batch groups the featurized inputs and targets for a set of scenes. The
// slices are index-aligned: Inputs[i] and Targets[i] come from Scenes[i].
type Batch struct {
	Inputs  []*mat.Dense
	Targets []*mat.Dense
	Scenes  []*Scene
}

// Len returns the number of scenes in the batch.
func (b *Batch) Len() int {
	return len(b.Inputs)
}

// Loader iterates a dataset in batches, featurizing scenes with a bounded
// worker pool. A Loader is reusable across epochs; each Epoch call draws a
// fresh scene order when shuffling is enabled.
type Loader struct {
	ds  *Dataset
	fz  *Featurizer
	rng *rand.Rand

	logger trajlog.Logger
}

// NewLoader builds a loader over ds using fz for featurization. The seed
// drives shuffle order; fixed seeds give reproducible epochs.
func NewLoader(ds *Dataset, fz *Featurizer, seed int64) *Loader {
	return &Loader{
		ds:  ds,
		fz:  fz,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// SetLogger attaches a logger for per-epoch progress output.
func (l *Loader) SetLogger(logger trajlog.Logger) {
	l.logger = logger
}

// NumBatches returns the number of batches one epoch yields. The final
// partial batch counts.
func (l *Loader) NumBatches() int {
	bs := l.ds.cfg.BatchSize
	return (len(l.ds.Scenes) + bs - 1) / bs
}

// Epoch returns a channel yielding one full pass over the dataset. Batches
// are featurized ahead of consumption by num_workers goroutines but
// delivered in order. The channel is closed after the last batch; a
// featurization failure surfaces as a BatchResult with Err set and ends
// the epoch.
func (l *Loader) Epoch() <-chan BatchResult {
	order := make([]int, len(l.ds.Scenes))
	for i := range order {
		order[i] = i
	}
	if l.ds.cfg.Shuffle {
		l.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	numBatches := l.NumBatches()
	results := make([]chan BatchResult, numBatches)
	for i := range results {
		results[i] = make(chan BatchResult, 1)
	}

	workers := l.ds.cfg.NumWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bi := range jobs {
				results[bi] <- l.buildBatch(order, bi)
			}
		}()
	}

	go func() {
		for bi := 0; bi < numBatches; bi++ {
			jobs <- bi
		}
		close(jobs)
		wg.Wait()
	}()

	out := make(chan BatchResult)
	go func() {
		defer close(out)
		for bi := 0; bi < numBatches; bi++ {
			res := <-results[bi]
			out <- res
			if res.Err != nil {
				return
			}
			if l.logger != nil {
				l.logger.Debug("batch ready",
					trajlog.BatchIndexKey, bi,
					trajlog.ScenesKey, res.Batch.Len(),
				)
			}
		}
	}()
	return out
}

// BatchResult pairs a batch with a featurization error. Exactly one of the
// two fields is meaningful.
type BatchResult struct {
	Batch *Batch
	Err   error
}

func (l *Loader) buildBatch(order []int, bi int) (res BatchResult) {
	defer errors.Recover(&res.Err, "featurize worker")

	bs := l.ds.cfg.BatchSize
	lo := bi * bs
	hi := lo + bs
	if hi > len(order) {
		hi = len(order)
	}

	b := &Batch{
		Inputs:  make([]*mat.Dense, 0, hi-lo),
		Targets: make([]*mat.Dense, 0, hi-lo),
		Scenes:  make([]*Scene, 0, hi-lo),
	}

	for _, si := range order[lo:hi] {
		s := l.ds.Scenes[si]

		x, err := l.fz.Features(s)
		if err != nil {
			return BatchResult{Err: errors.Wrapf(err, "dataset: scene %q", s.ID)}
		}
		y, err := l.fz.Targets(s)
		if err != nil {
			return BatchResult{Err: errors.Wrapf(err, "dataset: scene %q", s.ID)}
		}

		b.Inputs = append(b.Inputs, x)
		b.Targets = append(b.Targets, y)
		b.Scenes = append(b.Scenes, s)
	}

	return BatchResult{Batch: b}
}
