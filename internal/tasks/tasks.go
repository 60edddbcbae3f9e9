package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
)

// SongAdder creates one song. [services.APIClient] satisfies it.
type SongAdder interface {
	AddSong(ctx context.Context, in models.SongInput) (*models.Song, error)
}

// ImportOpts contains configuration for [Importer.Run].
type ImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// ImportItem is the outcome for one input row. Row is zero-based.
type ImportItem struct {
	Row   int              `json:"row"`
	Input models.SongInput `json:"input"`
	Song  *models.Song     `json:"song,omitempty"`
	Err   error            `json:"-"`
	Error string           `json:"error,omitempty"`
}

// ImportResult summarizes an import. Items are ordered by row.
type ImportResult struct {
	Total  int          `json:"total"`
	Added  int          `json:"added"`
	Failed int          `json:"failed"`
	Items  []ImportItem `json:"items"`
}

// Failures returns the items that were not added.
func (r *ImportResult) Failures() []ImportItem {
	var out []ImportItem
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

type importJob struct {
	row   int
	input models.SongInput
}

// Importer adds songs in bulk through a [SongAdder].
type Importer struct {
	adder  SongAdder
	logger *log.Logger
}

// NewImporter creates an Importer. A nil logger uses the default logger.
func NewImporter(adder SongAdder, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{adder: adder, logger: logger}
}

// Run adds every valid input with a rate-limited worker pool.
//
// An adder failure marks only that item as failed. Run returns an error only when the adder is missing or ctx ends
// before all inputs were attempted; the partial result is returned alongside that error.
func (im *Importer) Run(ctx context.Context, prog chan<- ProgressUpdate, inputs []models.SongInput, opts ImportOpts) (*ImportResult, error) {
	if im.adder == nil {
		return nil, fmt.Errorf("%w: song API client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	result := &ImportResult{Total: len(inputs), Items: make([]ImportItem, 0, len(inputs))}

	var valid []importJob
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			result.Items = append(result.Items, ImportItem{Row: i, Input: in, Err: fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)})
			continue
		}
		valid = append(valid, importJob{row: i, input: in})
	}
	im.sendProgress(prog, validateUpdate(len(inputs), len(inputs)-len(valid)))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan importJob)
	items := make(chan ImportItem, len(valid))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go im.worker(ctx, &wg, limiter, jobs, items)
	}

	go func() {
		defer close(jobs)
		for _, j := range valid {
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(items)
	}()

	attempted := 0
	for it := range items {
		attempted++
		result.Items = append(result.Items, it)
		if it.Err != nil {
			im.logger.Warn("failed to add song", "row", it.Row, "title", it.Input.Title, "error", it.Err)
			im.sendProgress(prog, songFailedUpdate(attempted, len(valid), it.Input, it.Err))
			continue
		}
		im.sendProgress(prog, songAddedUpdate(attempted, len(valid), it.Song))
	}

	slices.SortFunc(result.Items, func(a, b ImportItem) int { return a.Row - b.Row })
	for i := range result.Items {
		if err := result.Items[i].Err; err != nil {
			result.Failed++
			result.Items[i].Error = err.Error()
		} else {
			result.Added++
		}
	}

	if attempted < len(valid) {
		return result, fmt.Errorf("import interrupted after %d of %d songs: %w", attempted, len(valid), context.Cause(ctx))
	}

	im.sendProgress(prog, completeUpdate(result))
	return result, nil
}

// worker adds songs from jobs until it is closed or ctx ends.
func (im *Importer) worker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan importJob, items chan<- ImportItem) {
	defer wg.Done()

	for j := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			items <- ImportItem{Row: j.row, Input: j.input, Err: err}
			continue
		}

		song, err := im.adder.AddSong(ctx, j.input)
		if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		items <- ImportItem{Row: j.row, Input: j.input, Song: song, Err: err}
	}
}

// sendProgress sends update without blocking; updates are dropped when the channel is full.
func (im *Importer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
