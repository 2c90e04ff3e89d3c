// Package registry holds the ordered set of known spending categories and
// their display colors.
package registry

import (
	"math/rand/v2"
	"strings"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
)

// RandomIndex returns a value in [0, n). It picks a color once the palette
// is exhausted.
type RandomIndex func(n int) int

// Registry is the Category Registry. It is not safe for concurrent use;
// the session serializes access.
type Registry struct {
	categories []models.CategoryConfig
	random     RandomIndex
	logger     logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithRandom injects the random source used when every palette color is taken.
func WithRandom(random RandomIndex) Option {
	return func(r *Registry) {
		r.random = random
	}
}

// New creates a Registry seeded with the given categories. Entries with an
// empty or duplicate name are skipped.
func New(seed []models.CategoryConfig, logger logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		categories: make([]models.CategoryConfig, 0, len(seed)),
		random:     rand.IntN,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range seed {
		if c.Name == "" || r.indexOf(c.Name) >= 0 {
			continue
		}
		r.categories = append(r.categories, c)
	}
	return r
}

// NewDefault creates a Registry seeded with the default categories.
func NewDefault(logger logging.Logger, opts ...Option) *Registry {
	return New(models.DefaultCategoryConfigs(), logger, opts...)
}

func (r *Registry) indexOf(name string) int {
	for i, c := range r.categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AddCategory registers a new category and returns whether it was added.
// Blank names and existing names (exact match) are ignored. The color is the
// first palette entry no category uses yet, or a random palette entry when
// all are taken.
func (r *Registry) AddCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || r.indexOf(name) >= 0 {
		return false
	}

	color := r.nextColor()
	r.categories = append(r.categories, models.CategoryConfig{Name: name, Color: color})

	r.logger.WithFields(
		logging.Field{Key: logging.FieldCategory, Value: name},
		logging.Field{Key: logging.FieldColor, Value: color.ID},
	).Info("Category added")
	return true
}

func (r *Registry) nextColor() models.CategoryColor {
	used := make(map[string]bool, len(r.categories))
	for _, c := range r.categories {
		used[c.Color.ID] = true
	}

	palette := models.Palette()
	for _, color := range palette {
		if !used[color.ID] {
			return color
		}
	}
	return palette[r.random(len(palette))]
}

// SetColor replaces the color of an existing category. Unknown names are ignored.
func (r *Registry) SetColor(name string, color models.CategoryColor) bool {
	i := r.indexOf(name)
	if i < 0 {
		return false
	}
	r.categories[i].Color = color

	r.logger.WithFields(
		logging.Field{Key: logging.FieldCategory, Value: name},
		logging.Field{Key: logging.FieldColor, Value: color.ID},
	).Debug("Category color changed")
	return true
}

// Lookup returns the configuration of a registered category.
func (r *Registry) Lookup(name string) (models.CategoryConfig, bool) {
	i := r.indexOf(name)
	if i < 0 {
		return models.CategoryConfig{}, false
	}
	return r.categories[i], true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.indexOf(name) >= 0
}

// ColorFor returns the color of a category, or the fallback color for names
// that are not registered.
func (r *Registry) ColorFor(name string) models.CategoryColor {
	if c, ok := r.Lookup(name); ok {
		return c.Color
	}
	return models.FallbackColor
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// List returns a copy of the registered categories.
func (r *Registry) List() []models.CategoryConfig {
	out := make([]models.CategoryConfig, len(r.categories))
	copy(out, r.categories)
	return out
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	return len(r.categories)
}
