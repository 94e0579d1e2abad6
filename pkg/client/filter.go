package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

const (
	EmployeesLoadFailed   = "Failed to load employees."
	LinkHistoryLoadFailed = "Failed to load link history."
)

// FilterList loads a collection once and filters it locally by substring
type FilterList[T any] struct {
	fields  func(T) []string
	failMsg string

	mu      sync.RWMutex
	items   []T
	loaded  bool
	message string
}

// NewFilterList matches queries against the strings fields returns for each item
func NewFilterList[T any](fields func(T) []string, failureMessage string) *FilterList[T] {
	return &FilterList[T]{fields: fields, failMsg: failureMessage}
}

// Load fetches the collection unless it is already loaded.
// ErrUnauthorized is returned for the caller to redirect; any other failure leaves an empty list and a message.
func (f *FilterList[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded {
		return nil
	}

	items, err := fetch(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.items = nil
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		f.message = f.failMsg
		return nil
	}
	f.items, f.loaded, f.message = items, true, ""
	return nil
}

// Filter returns the items matching query case-insensitively. An empty query matches everything.
func (f *FilterList[T]) Filter(query string) []T {
	f.mu.RLock()
	defer f.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]T(nil), f.items...)
	}
	var out []T
	for _, item := range f.items {
		for _, field := range f.fields(item) {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Message is the inline failure text, empty when the last load succeeded
func (f *FilterList[T]) Message() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.message
}

// Clear forgets the loaded collection so the next Load fetches again
func (f *FilterList[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.loaded, f.message = nil, false, ""
}
