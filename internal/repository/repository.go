// Package repository is the gorm-backed data layer. Every failure it returns
// is either one of the apperror variants or a wrapped, unclassified error.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog-api/internal/apperror"
)

// Page selects a window of a list.
type Page struct {
	Offset int
	Limit  int
}

// Filter is a set of column equality conditions.
type Filter map[string]any

// Repository implements find/create/update/delete for one model.
type Repository[T any] struct {
	db       *gorm.DB
	resource string
	preload  []string
	timeout  time.Duration
	// unique reports the unique field a record would collide on.
	unique func(*T) (field string, value any)
}

func newRepository[T any](db *gorm.DB, resource string, timeout time.Duration, preload ...string) *Repository[T] {
	return &Repository[T]{db: db, resource: resource, preload: preload, timeout: timeout}
}

// session returns a db bound to ctx, bounded by the query timeout.
func (r *Repository[T]) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	return r.db.WithContext(ctx), cancel
}

func (r *Repository[T]) withPreload(db *gorm.DB) *gorm.DB {
	for _, p := range r.preload {
		db = db.Preload(p)
	}
	return db
}

// parseID rejects identifiers that are not UUIDs.
func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.MalformedID("id", id)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps a gorm error for record id onto the failure taxonomy.
func (r *Repository[T]) translate(err error, id string, rec *T) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(r.resource, id)
	case isDuplicate(err):
		field, value := "key", any(id)
		if r.unique != nil && rec != nil {
			field, value = r.unique(rec)
		}
		return apperror.Conflict(r.resource, field, value)
	default:
		return fmt.Errorf("%s: %w", r.resource, err)
	}
}

// Find lists records matching filter, oldest first.
func (r *Repository[T]) Find(ctx context.Context, filter Filter, page Page) ([]T, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := r.withPreload(db.Model(new(T)))
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	out := make([]T, 0)
	if err := q.Order("created_at asc").Order("id asc").Find(&out).Error; err != nil {
		return nil, r.translate(err, "", nil)
	}
	return out, nil
}

// FindOne returns the record with id.
func (r *Repository[T]) FindOne(ctx context.Context, id string) (*T, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	db, cancel := r.session(ctx)
	defer cancel()
	return r.first(db, Filter{"id": id}, id)
}

// FindBy returns the single record matching filter; label names it in a NotFound.
func (r *Repository[T]) FindBy(ctx context.Context, filter Filter, label string) (*T, error) {
	db, cancel := r.session(ctx)
	defer cancel()
	return r.first(db, filter, label)
}

func (r *Repository[T]) first(db *gorm.DB, filter Filter, label string) (*T, error) {
	rec := new(T)
	if err := r.withPreload(db).Where(map[string]any(filter)).First(rec).Error; err != nil {
		return nil, r.translate(err, label, nil)
	}
	return rec, nil
}

// Exists fails with NotFound unless a record with id exists.
func (r *Repository[T]) Exists(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	db, cancel := r.session(ctx)
	defer cancel()
	var n int64
	if err := db.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return r.translate(err, id, nil)
	}
	if n == 0 {
		return apperror.NotFound(r.resource, id)
	}
	return nil
}

// Create persists rec and fills generated fields.
func (r *Repository[T]) Create(ctx context.Context, rec *T) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return r.translate(db.Create(rec).Error, "", rec)
}

// Update applies patch (column -> value) to the record with id and returns it.
func (r *Repository[T]) Update(ctx context.Context, id string, patch map[string]any) (*T, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	db, cancel := r.session(ctx)
	defer cancel()

	var out *T
	err := db.Transaction(func(tx *gorm.DB) error {
		rec, err := r.first(tx, Filter{"id": id}, id)
		if err != nil {
			return err
		}
		if len(patch) > 0 {
			if err := tx.Model(new(T)).Where("id = ?", id).Updates(patch).Error; err != nil {
				return r.translate(err, id, rec)
			}
		}
		out, err = r.first(tx, Filter{"id": id}, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record with id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	db, cancel := r.session(ctx)
	defer cancel()
	return r.delete(db, id)
}

func (r *Repository[T]) delete(tx *gorm.DB, id string) error {
	res := tx.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return r.translate(res.Error, id, nil)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(r.resource, id)
	}
	return nil
}
