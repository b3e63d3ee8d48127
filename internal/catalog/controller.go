// Package catalog keeps the console's cached view of the product collection
// and reconciles it against the backend. The server response is the single
// source of truth: the cache only changes after a confirmed operation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopfront/adminweb/internal/shopapi"
)

// Backend is the slice of the REST client the controller needs.
type Backend interface {
	ListProducts(ctx context.Context, q shopapi.ListQuery) ([]shopapi.Product, error)
	CreateProduct(ctx context.Context, token string, in shopapi.ProductInput) (shopapi.Product, error)
	UpdateProduct(ctx context.Context, token string, id int, in shopapi.ProductInput) (shopapi.Product, error)
	DeleteProduct(ctx context.Context, token string, id int) error
}

// Draft holds raw editable field values as the user typed them. Parsing to
// numbers happens only at submit time.
type Draft struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Category    string
	ImageURL    string
}

// ErrValidation marks errors caught before any request is sent.
var ErrValidation = errors.New("validation")

const noEdit = 0

// Controller owns the cached product list, the per-id edit draft and the
// new-product draft. All methods are safe for concurrent handlers.
type Controller struct {
	api Backend

	mu       sync.Mutex
	products []shopapi.Product
	loaded   bool
	editing  int
	drafts   map[int]Draft
	newDraft Draft
}

func NewController(api Backend) *Controller {
	return &Controller{api: api, drafts: make(map[int]Draft)}
}

// Load replaces the cache wholesale with the backend's collection. On
// failure the cache stays in its previous not-loaded/stale state.
func (ctl *Controller) Load(ctx context.Context, q shopapi.ListQuery) error {
	items, err := ctl.api.ListProducts(ctx, q)
	if err != nil {
		return err
	}
	ctl.mu.Lock()
	ctl.products = items
	ctl.loaded = true
	ctl.mu.Unlock()
	return nil
}

// Loaded reports whether a list fetch has succeeded yet.
func (ctl *Controller) Loaded() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.loaded
}

// Products returns a copy of the cached ordered list.
func (ctl *Controller) Products() []shopapi.Product {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	out := make([]shopapi.Product, len(ctl.products))
	copy(out, ctl.products)
	return out
}

// NewDraft returns the current new-product draft.
func (ctl *Controller) NewDraft() Draft {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.newDraft
}

// SetNewDraft stores the add-form values so a failed create leaves them
// visible for retry.
func (ctl *Controller) SetNewDraft(d Draft) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.newDraft = d
}

// Create validates and submits the new-product draft. Name and price are
// required; a missing one fails before any request is sent and leaves the
// draft untouched. On success the server's product is prepended to the cache
// and the draft resets; on rejection the draft is kept for retry.
func (ctl *Controller) Create(ctx context.Context, token string, d Draft) error {
	ctl.SetNewDraft(d)

	if d.Name == "" || d.Price == "" {
		return fmt.Errorf("%w: name and price are required", ErrValidation)
	}
	in, err := d.parse()
	if err != nil {
		return err
	}

	created, err := ctl.api.CreateProduct(ctx, token, in)
	if err != nil {
		return err
	}

	ctl.mu.Lock()
	ctl.products = append([]shopapi.Product{created}, ctl.products...)
	ctl.newDraft = Draft{}
	ctl.mu.Unlock()
	return nil
}

// BeginEdit snapshots the cached product's editable fields into a draft and
// makes it the product in edit mode. Only one product edits at a time;
// starting another silently abandons the previous unsaved draft. Returns
// false for an unknown id.
func (ctl *Controller) BeginEdit(id int) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	for _, p := range ctl.products {
		if p.ID == id {
			if ctl.editing != noEdit && ctl.editing != id {
				delete(ctl.drafts, ctl.editing)
			}
			ctl.editing = id
			ctl.drafts[id] = draftOf(p)
			return true
		}
	}
	return false
}

// EditingID returns the id of the product in edit mode, or 0 for none.
func (ctl *Controller) EditingID() int {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.editing
}

// EditDraft returns the draft for id, if that product is in edit mode.
func (ctl *Controller) EditDraft(id int) (Draft, bool) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.editing != id {
		return Draft{}, false
	}
	d, ok := ctl.drafts[id]
	return d, ok
}

// CancelEdit discards the draft for id without contacting the backend.
func (ctl *Controller) CancelEdit(id int) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.editing == id {
		ctl.editing = noEdit
	}
	delete(ctl.drafts, id)
}

// SaveEdit submits the edited fields for id. On success the cache entry is
// replaced with the server's returned representation — not the local draft —
// and edit mode exits. On failure edit mode stays active with the submitted
// values retained so the user can retry or cancel.
func (ctl *Controller) SaveEdit(ctx context.Context, token string, id int, d Draft) error {
	ctl.mu.Lock()
	if ctl.editing != id {
		ctl.mu.Unlock()
		return fmt.Errorf("%w: product %d is not in edit mode", ErrValidation, id)
	}
	ctl.drafts[id] = d
	ctl.mu.Unlock()

	in, err := d.parse()
	if err != nil {
		return err
	}

	updated, err := ctl.api.UpdateProduct(ctx, token, id, in)
	if err != nil {
		return err
	}

	ctl.mu.Lock()
	for i := range ctl.products {
		if ctl.products[i].ID == id {
			ctl.products[i] = updated
			break
		}
	}
	ctl.editing = noEdit
	delete(ctl.drafts, id)
	ctl.mu.Unlock()
	return nil
}

// Delete removes the product on the backend, then filters it from the cache.
// A failed delete leaves the cache exactly as it was.
func (ctl *Controller) Delete(ctx context.Context, token string, id int) error {
	if err := ctl.api.DeleteProduct(ctx, token, id); err != nil {
		return err
	}

	ctl.mu.Lock()
	kept := ctl.products[:0]
	for _, p := range ctl.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	ctl.products = kept
	ctl.mu.Unlock()
	return nil
}

// Reset drops all drafts and exits edit mode. Wired to the session hub so a
// logout does not leak one operator's half-typed edits to the next.
func (ctl *Controller) Reset() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.editing = noEdit
	ctl.drafts = make(map[int]Draft)
	ctl.newDraft = Draft{}
}

func (d Draft) parse() (shopapi.ProductInput, error) {
	price, err := strconv.ParseFloat(d.Price, 64)
	if err != nil {
		return shopapi.ProductInput{}, fmt.Errorf("%w: price must be a number", ErrValidation)
	}

	stock := 0
	if d.Stock != "" {
		stock, err = strconv.Atoi(d.Stock)
		if err != nil {
			return shopapi.ProductInput{}, fmt.Errorf("%w: stock must be an integer", ErrValidation)
		}
	}

	return shopapi.ProductInput{
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Stock:       stock,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
	}, nil
}

func draftOf(p shopapi.Product) Draft {
	return Draft{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Stock:       strconv.Itoa(p.Stock),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}
