package queue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"draftsmith/pkg/pipeline"
	"draftsmith/pkg/utils"
)

var (
	ErrFull    = errors.New("queue is full")
	ErrStopped = errors.New("queue is stopped")
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// RunFunc executes one run and reports progress through progress.
type RunFunc func(ctx context.Context, progress func(pipeline.Event)) (*pipeline.Result, error)

type Job struct {
	Label string
	Run   RunFunc
}

// Info is the registry entry of a run.
type Info struct {
	ID       string           `json:"id"`
	Label    string           `json:"label,omitempty"`
	Status   Status           `json:"status"`
	Created  time.Time        `json:"created"`
	Started  time.Time        `json:"started,omitzero"`
	Finished time.Time        `json:"finished,omitzero"`
	Error    string           `json:"error,omitempty"`
	Result   *pipeline.Result `json:"result,omitempty"`
}

// Outcome is delivered once when a run ends.
type Outcome struct {
	Result *pipeline.Result
	Err    error
}

// Ticket follows one queued run. Events is closed when the run ends, right
// before Done receives the outcome.
type Ticket struct {
	ID     string
	Events <-chan pipeline.Event
	Done   <-chan Outcome
}

type item struct {
	id     string
	job    Job
	events chan pipeline.Event
	done   chan Outcome
}

var _ Queue = (*RunQueue)(nil)

// RunQueue executes runs one at a time in submission order.
type RunQueue struct {
	items  chan *item
	runs   *utils.SyncMap[map[string]Info, string, Info]
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	// mu orders Add against Stop so nothing is enqueued after the drain.
	mu      sync.Mutex
	stopped bool
}

// eventBuffer is how many progress events a slow reader may fall behind
// before events are dropped.
const eventBuffer = 256

func New(size int, logger *log.Logger) *RunQueue {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RunQueue{
		items:  make(chan *item, max(size, 1)),
		runs:   utils.NewSyncMap[map[string]Info](),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (q *RunQueue) Start() {
	q.wg.Add(1)
	go q.processLoop()
}

// Stop cancels the running job and waits for the loop to exit. Queued jobs
// are failed with ErrStopped.
func (q *RunQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()

	q.once.Do(q.cancel)
	q.wg.Wait()
	for {
		select {
		case it := <-q.items:
			q.finish(it, nil, ErrStopped)
		default:
			return
		}
	}
}

func (q *RunQueue) Add(job Job) (*Ticket, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil, ErrStopped
	}
	it := &item{
		id:     ksuid.New().String(),
		job:    job,
		events: make(chan pipeline.Event, eventBuffer),
		done:   make(chan Outcome, 1),
	}
	q.runs.Store(it.id, Info{ID: it.id, Label: job.Label, Status: StatusQueued, Created: time.Now()})

	select {
	case q.items <- it:
		return &Ticket{ID: it.id, Events: it.events, Done: it.done}, nil
	default:
		q.runs.Delete(it.id)
		return nil, ErrFull
	}
}

func (q *RunQueue) Get(id string) (Info, bool) {
	return q.runs.Load(id)
}

// List returns every known run, oldest first.
func (q *RunQueue) List() []Info {
	snap := q.runs.Snapshot()
	out := make([]Info, 0, len(snap))
	for _, info := range snap {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return a.Created.Compare(b.Created) })
	return out
}

func (q *RunQueue) processLoop() {
	defer q.wg.Done()
	q.logger.Info("run queue started")
	for {
		select {
		case <-q.ctx.Done():
			q.logger.Info("run queue stopped")
			return
		case it := <-q.items:
			if q.ctx.Err() != nil {
				q.finish(it, nil, ErrStopped)
				continue
			}
			q.process(it)
		}
	}
}

func (q *RunQueue) process(it *item) {
	info, _ := q.runs.Load(it.id)
	info.Status = StatusRunning
	info.Started = time.Now()
	q.runs.Store(it.id, info)
	q.logger.Info("processing run", "id", it.id, "label", it.job.Label)

	progress := func(e pipeline.Event) {
		select {
		case it.events <- e:
		default:
			q.logger.Debug("dropping progress event", "id", it.id, "stage", e.Stage)
		}
	}
	res, err := it.job.Run(q.ctx, progress)
	if err != nil {
		q.logger.Error("run failed", "id", it.id, "error", err)
	}
	q.finish(it, res, err)
}

func (q *RunQueue) finish(it *item, res *pipeline.Result, err error) {
	info, _ := q.runs.Load(it.id)
	info.Finished = time.Now()
	info.Result = res
	info.Status = StatusDone
	if err != nil {
		info.Status = StatusFailed
		info.Error = err.Error()
	}
	q.runs.Store(it.id, info)

	close(it.events)
	it.done <- Outcome{Result: res, Err: err}
}
