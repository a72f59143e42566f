package browser

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/careers-proxy/internal/models"
)

// View is one of the three mutually exclusive careers-page views.
type View int

const (
	ViewListing View = iota
	ViewDescription
	ViewApplication
)

// JobSource is the proxy API as the browser sees it.
type JobSource interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (*models.JobDetails, error)
}

// Renderer receives full-replace render calls; the controller never patches
// a previous render incrementally.
type Renderer interface {
	// RenderList replaces the whole list container. An empty slice means the
	// "no jobs found" state, not an error.
	RenderList(jobs []models.Job)
	RenderDetails(d *models.JobDetails)
	RenderApplication(d *models.JobDetails)
	// RenderError surfaces an error banner without touching prior state.
	RenderError(msg string)
}

// SortKey values accepted by Sort.
const (
	SortByTitle    = "title"
	SortByLocation = "location"
	SortByCompany  = "company"
)

const defaultDebounce = 300 * time.Millisecond

// Controller is the job browser view-model: it owns the fetched list, the
// derived filtered list, the sort state and the current view, and mirrors the
// selected job into a URL query string.
type Controller struct {
	mu       sync.Mutex
	source   JobSource
	renderer Renderer
	debounce time.Duration

	view      View
	jobs      []models.Job
	filtered  []models.Job
	selected  *models.JobDetails
	searchRaw string

	sortBy    string
	sortOrder string // "asc" or "desc"

	searchTimer *time.Timer
	searchSeq   int
}

type Option func(*Controller)

// WithDebounce overrides the search debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func New(source JobSource, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		renderer:  renderer,
		debounce:  defaultDebounce,
		view:      ViewListing,
		sortOrder: "asc",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh reloads the job list. On failure the previous list stays visible
// and only an error banner is raised.
func (c *Controller) Refresh(ctx context.Context) error {
	jobs, err := c.source.ListJobs(ctx)
	if err != nil {
		c.renderer.RenderError("Could not load jobs. Please try again.")
		return err
	}

	c.mu.Lock()
	c.jobs = jobs
	c.rederiveLocked()
	out := c.filtered
	c.mu.Unlock()

	c.renderer.RenderList(out)
	return nil
}

// SelectJob moves Listing -> Description. The detail fetch must succeed
// before the transition; on failure the view stays where it was.
func (c *Controller) SelectJob(ctx context.Context, id string) error {
	d, err := c.source.GetJob(ctx, id)
	if err != nil {
		c.renderer.RenderError("Could not load this job. Please try again.")
		return err
	}

	c.mu.Lock()
	c.selected = d
	c.view = ViewDescription
	c.mu.Unlock()

	c.renderer.RenderDetails(d)
	return nil
}

// Back returns from Description to Listing.
func (c *Controller) Back() {
	c.toListing()
}

// Cancel returns to Listing from any view.
func (c *Controller) Cancel() {
	c.toListing()
}

func (c *Controller) toListing() {
	c.mu.Lock()
	c.view = ViewListing
	c.selected = nil
	out := c.filtered
	c.mu.Unlock()

	c.renderer.RenderList(out)
}

// Apply moves Description -> Application. A no-op unless a job is selected.
func (c *Controller) Apply() {
	c.mu.Lock()
	if c.view != ViewDescription || c.selected == nil {
		c.mu.Unlock()
		return
	}
	c.view = ViewApplication
	d := c.selected
	c.mu.Unlock()

	c.renderer.RenderApplication(d)
}

// Location serializes the view state as a URL query string. The URL is one
// serialization target of the state machine, not its source of truth.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return ""
	}
	q := url.Values{}
	q.Set("job", c.selected.ID)
	return q.Encode()
}

// HandleLocation is the popstate equivalent: a job id in the query means the
// Description view (re-fetched), no id means Listing.
func (c *Controller) HandleLocation(ctx context.Context, rawQuery string) error {
	q, err := url.ParseQuery(rawQuery)
	if err == nil {
		if id := q.Get("job"); id != "" {
			return c.SelectJob(ctx, id)
		}
	}
	c.toListing()
	return nil
}

// Search filters by case-insensitive substring across title, company and
// location. Renders are debounced: a later keystroke cancels the pending one.
func (c *Controller) Search(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchRaw = term
	c.searchSeq++
	seq := c.searchSeq

	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		if seq != c.searchSeq {
			c.mu.Unlock()
			return
		}
		c.rederiveLocked()
		out := c.filtered
		c.mu.Unlock()

		c.renderer.RenderList(out)
	})
}

// Sort orders the list by the given key. Activating the location sort while
// already on location flips the order; switching keys resets to ascending.
func (c *Controller) Sort(key string) {
	c.mu.Lock()
	if key == SortByLocation && c.sortBy == SortByLocation {
		if c.sortOrder == "asc" {
			c.sortOrder = "desc"
		} else {
			c.sortOrder = "asc"
		}
	} else {
		c.sortBy = key
		c.sortOrder = "asc"
	}
	c.rederiveLocked()
	out := c.filtered
	c.mu.Unlock()

	c.renderer.RenderList(out)
}

// rederiveLocked rebuilds filtered from scratch: sort the full list, then
// filter by the search term. Never an incremental patch.
func (c *Controller) rederiveLocked() {
	out := make([]models.Job, len(c.jobs))
	copy(out, c.jobs)

	if c.sortBy != "" {
		asc := c.sortOrder == "asc"
		sort.SliceStable(out, func(i, j int) bool {
			a, b := sortValue(out[i], c.sortBy), sortValue(out[j], c.sortBy)
			if asc {
				return a < b
			}
			return a > b
		})
	}

	term := strings.ToLower(strings.TrimSpace(c.searchRaw))
	if term != "" {
		filtered := out[:0]
		for _, j := range out {
			if matches(j, term) {
				filtered = append(filtered, j)
			}
		}
		out = filtered
	}
	c.filtered = out
}

func sortValue(j models.Job, key string) string {
	switch key {
	case SortByLocation:
		return strings.ToLower(j.DisplayLocation())
	case SortByCompany:
		return strings.ToLower(j.Company)
	default:
		return strings.ToLower(j.Title)
	}
}

func matches(j models.Job, term string) bool {
	return strings.Contains(strings.ToLower(j.Title), term) ||
		strings.Contains(strings.ToLower(j.Company), term) ||
		strings.Contains(strings.ToLower(j.Location), term)
}

// CurrentView reports which of the three views is active.
func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Filtered returns the derived list as last rendered.
func (c *Controller) Filtered() []models.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Job, len(c.filtered))
	copy(out, c.filtered)
	return out
}

// Selected returns the job details currently shown, if any.
func (c *Controller) Selected() *models.JobDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}
