// Package query turns a filter selection and a page number into resource list
// requests. Only the answer to the most recently issued request is kept.
package query

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// DefaultPerPage matches the dashboard table
const DefaultPerPage = 10

// ErrSuperseded is returned to a caller whose response arrived after a newer
// request was issued. The response has been discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Lister is the part of the API client the coordinator needs
type Lister interface {
	ListResources(ctx context.Context, params url.Values) (*model.ResourcesResponse, error)
}

// Coordinator is safe for concurrent use
type Coordinator struct {
	lister  Lister
	perPage int

	mu       sync.Mutex
	seq      uint64
	inFlight int

	// selection and page of the last good response
	selection filters.Selection
	page      int
	current   *model.ResourcesResponse
	lastErr   error

	// selection and page of the latest request, good or not
	wantSel  filters.Selection
	wantPage int
}

// NewCoordinator creates a coordinator; perPage <= 0 means DefaultPerPage
func NewCoordinator(lister Lister, perPage int) *Coordinator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Coordinator{
		lister:    lister,
		perPage:   perPage,
		selection: filters.Default(),
		page:      1,
		wantSel:   filters.Default(),
		wantPage:  1,
	}
}

// Params builds the query for sel and page. Default filters are left out.
func Params(sel filters.Selection, page, perPage int) url.Values {
	v := sel.Values()
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// FetchPage requests page of sel. The page is clamped to [1, total_pages]
// using the last response for the same selection, where an empty result has
// one page; a page the backend reports as out of range is fetched again at
// the last page.
//
// On failure the previous page stays current and the error is returned.
func (c *Coordinator) FetchPage(ctx context.Context, sel filters.Selection, page int) (*model.ResourcesResponse, error) {
	sel = sel.Normalize()

	c.mu.Lock()
	page = c.clamp(sel, page)
	c.wantSel = sel
	c.wantPage = page
	c.seq++
	id := c.seq
	c.inFlight++
	c.mu.Unlock()

	resp, err := c.fetch(ctx, sel, page)
	if err == nil && page > lastPage(resp) {
		log.Debug("Requested page out of range", "page", page, "total_pages", resp.Pagination.TotalPages)
		page = lastPage(resp)
		resp, err = c.fetch(ctx, sel, page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if id != c.seq {
		log.Debug("Discarding superseded resource page", "request", id, "latest", c.seq)
		return nil, ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		return nil, err
	}

	c.lastErr = nil
	c.wantPage = page
	c.selection = sel
	c.page = page
	c.current = resp
	return resp, nil
}

func (c *Coordinator) fetch(ctx context.Context, sel filters.Selection, page int) (*model.ResourcesResponse, error) {
	params := Params(sel, page, c.perPage)
	log.Debug("Fetching resources", "query", params.Encode())
	resp, err := c.lister.ListResources(ctx, params)
	if err != nil {
		log.Warn("Failed to fetch resources", "error", err)
		return nil, err
	}
	return resp, nil
}

// clamp bounds page; callers hold mu
func (c *Coordinator) clamp(sel filters.Selection, page int) int {
	if page < 1 {
		page = 1
	}
	if c.current != nil && c.selection == sel {
		if last := lastPage(c.current); page > last {
			page = last
		}
	}
	return page
}

func lastPage(resp *model.ResourcesResponse) int {
	if resp.Pagination.TotalPages < 1 {
		return 1
	}
	return resp.Pagination.TotalPages
}

// SetFilters fetches the first page of sel
func (c *Coordinator) SetFilters(ctx context.Context, sel filters.Selection) (*model.ResourcesResponse, error) {
	return c.FetchPage(ctx, sel, 1)
}

// GoToPage fetches page of the most recently requested selection, which
// may be a filter change that failed
func (c *Coordinator) GoToPage(ctx context.Context, page int) (*model.ResourcesResponse, error) {
	c.mu.Lock()
	sel := c.wantSel
	c.mu.Unlock()
	return c.FetchPage(ctx, sel, page)
}

// Next and Prev step from the page on screen. When the requested selection
// never loaded they start again from its first page.
func (c *Coordinator) Next(ctx context.Context) (*model.ResourcesResponse, error) {
	return c.step(ctx, 1)
}

func (c *Coordinator) Prev(ctx context.Context) (*model.ResourcesResponse, error) {
	return c.step(ctx, -1)
}

func (c *Coordinator) step(ctx context.Context, delta int) (*model.ResourcesResponse, error) {
	c.mu.Lock()
	sel, page := c.wantSel, 1
	if c.current != nil && c.selection == sel {
		page = c.page + delta
	}
	c.mu.Unlock()
	return c.FetchPage(ctx, sel, page)
}

// Refresh repeats the latest request
func (c *Coordinator) Refresh(ctx context.Context) (*model.ResourcesResponse, error) {
	c.mu.Lock()
	sel, page := c.wantSel, c.wantPage
	c.mu.Unlock()
	return c.FetchPage(ctx, sel, page)
}

// Current returns the last good page and the error of the latest request
func (c *Coordinator) Current() (*model.ResourcesResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.lastErr
}

// Page returns the page of the last good response
func (c *Coordinator) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Selection returns the selection of the last good response
func (c *Coordinator) Selection() filters.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Requested returns the selection of the latest request
func (c *Coordinator) Requested() filters.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wantSel
}

// Loading reports whether any request is in flight
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}
