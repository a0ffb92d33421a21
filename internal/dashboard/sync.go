package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mbichler/pulse/internal/models"
)

// PollInterval is the fixed snapshot re-poll cadence of the dashboard.
const PollInterval = 10 * time.Second

// Well-known paths on the serve endpoint.
const (
	SnapshotPath = "/data/live-status.json"
	DataPath     = "/data/tasks.json"
)

// ViewModel is the merged read model handed to the renderer: the live
// snapshot plus the static tasks/projects document.
type ViewModel struct {
	Status *models.StatusSnapshot
	Data   *models.DataDocument
}

// RenderFunc is invoked after every applied snapshot update.
type RenderFunc func(ViewModel)

// Syncer polls the published snapshot on a fixed interval and reconciles it
// into a view model. It owns no business logic beyond reconciliation
// timing: a failed fetch is a no-op and the previous view model stays.
//
// Polls may overlap when a fetch outlives the interval. Every applied
// response carries a monotonic generation number; a stale response arriving
// after a newer one is dropped instead of rendered out of order.
type Syncer struct {
	client   *http.Client
	baseURL  string
	render   RenderFunc
	interval time.Duration

	mu      sync.Mutex
	nextGen uint64
	applied uint64
	vm      ViewModel
}

// NewSyncer creates a Syncer against baseURL. A nil render is allowed.
func NewSyncer(baseURL string, render RenderFunc) *Syncer {
	return &Syncer{
		client:   &http.Client{Timeout: PollInterval},
		baseURL:  baseURL,
		render:   render,
		interval: PollInterval,
	}
}

// Run fetches the static data document and first snapshot immediately, then
// re-polls only the snapshot every interval until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	s.loadData(ctx)
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A slow fetch must not stall the tick loop; the generation
			// guard in apply keeps overlapping polls ordered.
			go s.poll(ctx)
		}
	}
}

// ViewModel returns the current reconciled view model.
func (s *Syncer) ViewModel() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm
}

// poll fetches the snapshot once and applies it if still fresh.
func (s *Syncer) poll(ctx context.Context) {
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	// Cache buster mirrors the dashboard's re-poll contract.
	url := fmt.Sprintf("%s%s?t=%d", s.baseURL, SnapshotPath, time.Now().UnixMilli())

	var snap models.StatusSnapshot
	if err := s.fetchJSON(ctx, url, &snap); err != nil {
		return
	}
	s.apply(gen, &snap)
}

// apply installs a fetched snapshot unless a newer one already landed.
func (s *Syncer) apply(gen uint64, snap *models.StatusSnapshot) {
	s.mu.Lock()
	if gen <= s.applied {
		s.mu.Unlock()
		return
	}
	s.applied = gen
	s.vm.Status = snap
	vm := s.vm
	render := s.render
	s.mu.Unlock()

	if render != nil {
		render(vm)
	}
}

// loadData fetches the static tasks/projects document once. Failure leaves
// the data side of the view model empty; renderers fall back per field.
func (s *Syncer) loadData(ctx context.Context) {
	var doc models.DataDocument
	if err := s.fetchJSON(ctx, s.baseURL+DataPath, &doc); err != nil {
		return
	}

	s.mu.Lock()
	s.vm.Data = &doc
	s.mu.Unlock()
}

func (s *Syncer) fetchJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
