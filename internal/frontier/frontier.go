// Package frontier maintains the run-scoped crawl state: the visited set,
// the pending-task queue, and the page/depth budgets bounding a run.
package frontier

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-engine/internal/model"
)

// Budget bounds a crawl run.
type Budget struct {
	MaxPages int
	MaxDepth int
}

// Validate rejects nonsensical budgets before any fetch begins.
func (b Budget) Validate() error {
	if b.MaxPages < 1 {
		return eris.Errorf("frontier: max pages must be >= 1, got %d", b.MaxPages)
	}
	if b.MaxDepth < 0 {
		return eris.Errorf("frontier: max depth must be >= 0, got %d", b.MaxDepth)
	}
	return nil
}

// Frontier is the single mutable structure shared by a run's workers. All
// mutation goes through its synchronized methods; the check-and-insert on
// the visited set is atomic with enqueueing, so no URL is ever fetched twice
// within a run.
type Frontier struct {
	mu      sync.Mutex
	visited map[string]bool
	queue   []model.ScrapeTask
	fetched int
	budget  Budget
}

// New creates a Frontier for one run.
func New(budget Budget) (*Frontier, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return &Frontier{
		visited: make(map[string]bool),
		budget:  budget,
	}, nil
}

// AddSeed enqueues a seed task at depth 0. Returns false if the URL was
// already visited or the page budget is committed.
func (f *Frontier) AddSeed(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(model.ScrapeTask{URL: url, Depth: 0})
}

// AddLinks enqueues discovered links as tasks one level deeper than their
// parent, in the given order, stopping at the depth and page budgets.
// Returns the number actually enqueued.
func (f *Frontier) AddLinks(parent model.ScrapeTask, links []Link) int {
	if parent.Depth+1 > f.budget.MaxDepth {
		return 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for _, l := range links {
		task := model.ScrapeTask{
			URL:       l.URL,
			Depth:     parent.Depth + 1,
			ParentURL: parent.URL,
			Priority:  l.Score,
		}
		if f.add(task) {
			added++
		}
	}
	return added
}

// add is the atomic check-and-insert. Caller holds the mutex.
func (f *Frontier) add(task model.ScrapeTask) bool {
	if f.visited[task.URL] {
		return false
	}
	// Committed pages = already fetched + still queued.
	if f.fetched+len(f.queue) >= f.budget.MaxPages {
		return false
	}
	f.visited[task.URL] = true
	f.queue = append(f.queue, task)
	return true
}

// Next dequeues the next task and counts it against the page budget.
// Returns false when the queue is empty or the budget is exhausted.
func (f *Frontier) Next() (model.ScrapeTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 || f.fetched >= f.budget.MaxPages {
		return model.ScrapeTask{}, false
	}
	task := f.queue[0]
	f.queue = f.queue[1:]
	f.fetched++
	return task, true
}

// NextBatch dequeues up to n tasks in one critical section.
func (f *Frontier) NextBatch(n int) []model.ScrapeTask {
	f.mu.Lock()
	defer f.mu.Unlock()

	var batch []model.ScrapeTask
	for len(batch) < n && len(f.queue) > 0 && f.fetched < f.budget.MaxPages {
		batch = append(batch, f.queue[0])
		f.queue = f.queue[1:]
		f.fetched++
	}
	return batch
}

// PagesFetched returns the number of tasks handed out so far.
func (f *Frontier) PagesFetched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Budget returns the run's budget.
func (f *Frontier) Budget() Budget {
	return f.budget
}
