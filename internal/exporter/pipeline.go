package exporter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
)

// ProgressInterval is how often the estimated progress advances
const ProgressInterval = 200 * time.Millisecond

// MaxConcurrent bounds ExecuteEach
const MaxConcurrent = 3

// Downloader is the part of the API client the pipeline calls
type Downloader interface {
	Export(ctx context.Context, format string, params url.Values) ([]byte, error)
}

// Progress is an estimate: the backend does not report transfer progress.
// Percent climbs towards 90 while the download runs and is 100 when done.
type Progress struct {
	Percent   float64
	Done      bool
	Failed    bool
	Estimated bool
}

// Result is a downloaded report
type Result struct {
	Request  Request
	Filename string
	Data     []byte
}

// Pipeline runs exports. It holds no per-export state and may run several
// exports at once.
type Pipeline struct {
	downloader Downloader
	update     func(Progress)
	interval   time.Duration
	now        func() time.Time
	step       func() float64
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithInterval changes ProgressInterval
func WithInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.interval = d }
}

// WithClock replaces time.Now for file names
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline; update may be nil
func New(downloader Downloader, update func(Progress), opts ...Option) *Pipeline {
	p := &Pipeline{
		downloader: downloader,
		update:     update,
		interval:   ProgressInterval,
		now:        time.Now,
		step:       func() float64 { return rand.Float64() * 15 },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute downloads the report for req. The returned Result is not yet
// saved; see Save.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return p.execute(ctx, req, Filename(req.Format, p.now()), p.update)
}

func (p *Pipeline) execute(ctx context.Context, req Request, filename string, update func(Progress)) (*Result, error) {
	params := req.Values()
	log.Info("Starting export", "format", req.Format, "query", params.Encode())

	stop := p.estimate(update)
	data, err := p.downloader.Export(ctx, string(req.Format), params)
	stop()

	if err != nil {
		log.Error("Export failed", "format", req.Format, "error", err)
		if update != nil {
			update(Progress{Failed: true, Estimated: true})
		}
		return nil, err
	}
	if update != nil {
		update(Progress{Percent: 100, Done: true, Estimated: true})
	}

	log.Info("Export downloaded", "format", req.Format, "bytes", len(data))
	return &Result{Request: req, Filename: filename, Data: data}, nil
}

// estimate advances a fake percentage until stop is called
func (p *Pipeline) estimate(update func(Progress)) (stop func()) {
	if update == nil {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		pct := 0.0
		update(Progress{Percent: pct, Estimated: true})
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if pct >= 90 {
					continue
				}
				pct = min(pct+p.step(), 90)
				update(Progress{Percent: pct, Estimated: true})
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// Save writes res into dir and returns the path
func Save(dir string, res *Result) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, res.Filename)
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Outcome is the result of one department in ExecuteEach
type Outcome struct {
	Department string
	Result     *Result
	Err        error
}

// ExecuteEach exports base once per department, at most maxConcurrent at a
// time. Location and device filters are dropped since they belong to one
// department. Outcomes are returned in the order of departments.
func (p *Pipeline) ExecuteEach(ctx context.Context, base Request, departments []string, maxConcurrent int, onDone func(Outcome)) ([]Outcome, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if maxConcurrent <= 0 {
		maxConcurrent = MaxConcurrent
	}

	ts := p.now()
	outcomes := make([]Outcome, len(departments))
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	log.Info("Exporting departments", "count", len(departments), "max_concurrent", maxConcurrent)

	for i, dept := range departments {
		wg.Add(1)

		go func(i int, dept string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			req := base
			req.Selection = filters.Selection{Department: dept}.Normalize()

			var out Outcome
			if err := ctx.Err(); err != nil {
				out = Outcome{Department: dept, Err: err}
			} else {
				res, err := p.execute(ctx, req, DepartmentFilename(req.Format, dept, ts), nil)
				out = Outcome{Department: dept, Result: res, Err: err}
			}

			mu.Lock()
			outcomes[i] = out
			completed++
			log.Debug("Department export finished", "department", dept, "completed", completed, "total", len(departments))
			if onDone != nil {
				onDone(out)
			}
			mu.Unlock()
		}(i, dept)
	}

	wg.Wait()
	return outcomes, nil
}
