// Package form implements the purchase form controller. It mediates between
// the static catalog and the store: selecting a model fills the derived
// fields, submitting validates, persists and refreshes the list. The
// controller knows nothing about how the form is drawn; the CLI, the
// interactive terminal form and the HTTP front end all drive it the same way.
package form

import (
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/bikeledger/internal/catalog"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// Fields holds the form values as the user sees them.
type Fields struct {
	Model     string `json:"model" validate:"required"`
	Brand     string `json:"brand" validate:"required"`
	BuiltYear string `json:"built_year" validate:"required"`
	Year      string `json:"year" validate:"required"`
	Price     string `json:"price" validate:"required"`
}

// Store is the persistence the controller needs.
type Store interface {
	Insert(model, brand string, builtYear, year int, price float64) (types.BikeEntry, error)
	ListAll() ([]types.BikeEntry, error)
}

// Outcome describes the result of a Submit. Fields and Notice are always
// set; Entry and Rows only after a successful insert.
type Outcome struct {
	Entry  types.BikeEntry   `json:"entry"`
	Fields Fields            `json:"form"`
	Rows   []types.BikeEntry `json:"rows,omitempty"`
	Notice Notification      `json:"notice"`
}

// Controller holds one form's state. Calls are serialized.
type Controller struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	store   Store
	notify  Notifier
	log     *zap.Logger

	fields Fields
	rows   []types.BikeEntry
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New returns a controller with the first catalog model selected.
// A nil notifier discards notifications.
func New(cat *catalog.Catalog, store Store, notify Notifier, opts ...Option) *Controller {
	if notify == nil {
		notify = NotifierFunc(func(Notification) {})
	}
	c := &Controller{
		catalog: cat,
		store:   store,
		notify:  notify,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if models := cat.Models(); len(models) > 0 {
		c.selectLocked(models[0])
	}
	return c
}

// Catalog returns the catalog the controller fills fields from.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// SelectModel fills Brand, BuiltYear and Price from the catalog entry for
// model. A model absent from the catalog leaves those fields empty. Year is
// not touched. The returned Fields are a snapshot.
func (c *Controller) SelectModel(model string) Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(model)
	return c.fields
}

func (c *Controller) selectLocked(model string) {
	c.fields.Model = model
	entry, ok := c.catalog.Lookup(model)
	if !ok {
		c.fields.Brand, c.fields.BuiltYear, c.fields.Price = "", "", ""
		return
	}
	c.fields.Brand = entry.Brand
	c.fields.BuiltYear = strconv.Itoa(entry.BuiltYear)
	c.fields.Price = FormatPrice(entry.Price)
}

// Submit validates in and, when valid, inserts it and refreshes the rows.
// Exactly one notification is emitted for the submission itself.
//
// On success the form keeps the submitted model, brand and built year,
// clears Year and resets Price to the catalog default. On failure the form
// keeps in unchanged so the user can correct it. Validation failures return
// a *types.ValidationError and never reach the store; store failures return
// a *types.PersistenceError.
func (c *Controller) Submit(in Fields) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.With(zap.String("submission", uuid.NewString()))
	c.fields = in

	sub, err := Validate(in)
	if err != nil {
		var ve *types.ValidationError
		errors.As(err, &ve)
		n := Notification{
			Level:   LevelWarning,
			Title:   titleInputError,
			Message: warningMessages[ve.Reason],
			Rule:    ve.Reason,
		}
		log.Info("submission rejected", zap.String("field", ve.Field), zap.String("rule", ve.Reason))
		c.notify.Notify(n)
		return Outcome{Fields: c.fields, Notice: n}, err
	}

	entry, err := c.store.Insert(sub.Model, sub.Brand, sub.BuiltYear, sub.Year, sub.Price)
	if err != nil {
		n := errorNotice(err)
		log.Error("insert failed", zap.Error(err))
		c.notify.Notify(n)
		return Outcome{Fields: c.fields, Notice: n}, err
	}

	n := Notification{Level: LevelInfo, Title: titleSuccess, Message: msgAdded}
	log.Info("entry added", zap.Int64("id", entry.ID), zap.String("model", entry.Model))
	c.notify.Notify(n)

	c.fields = Fields{
		Model:     sub.Model,
		Brand:     sub.Brand,
		BuiltYear: strconv.Itoa(sub.BuiltYear),
	}
	if ce, ok := c.catalog.Lookup(sub.Model); ok {
		c.fields.Price = FormatPrice(ce.Price)
	}

	out := Outcome{Entry: entry, Fields: c.fields, Notice: n}
	rows, err := c.refreshLocked()
	if err != nil {
		return out, err
	}
	out.Rows = rows
	return out, nil
}

// Refresh re-reads all rows from the store. A failure is reported through
// an error notification and returned.
func (c *Controller) Refresh() ([]types.BikeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked()
}

func (c *Controller) refreshLocked() ([]types.BikeEntry, error) {
	rows, err := c.store.ListAll()
	if err != nil {
		c.log.Error("refresh failed", zap.Error(err))
		c.notify.Notify(errorNotice(err))
		return nil, err
	}
	c.rows = rows
	return copyRows(rows), nil
}

// Fields returns a snapshot of the current form values.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetYear sets the ownership year field.
func (c *Controller) SetYear(year string) Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Year = year
	return c.fields
}

// SetBrand overrides the brand field, for models outside the catalog.
func (c *Controller) SetBrand(brand string) Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Brand = brand
	return c.fields
}

// SetBuiltYear overrides the built year field.
func (c *Controller) SetBuiltYear(year string) Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.BuiltYear = year
	return c.fields
}

// SetPrice overrides the price field.
func (c *Controller) SetPrice(price string) Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Price = price
	return c.fields
}

// Rows returns the rows read by the last successful refresh.
func (c *Controller) Rows() []types.BikeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyRows(c.rows)
}

// FormatPrice renders a price the way the form shows it: no trailing ".0"
// for whole amounts.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func errorNotice(err error) Notification {
	return Notification{Level: LevelError, Title: titleError, Message: err.Error()}
}

func copyRows(rows []types.BikeEntry) []types.BikeEntry {
	out := make([]types.BikeEntry, len(rows))
	copy(out, rows)
	return out
}
