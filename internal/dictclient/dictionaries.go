package dictclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aelexs/dictsmoke/internal/domain"
)

const (
	dictionariesPath = "dictionaries"
	versionsPath     = "versions"
)

func checkType(op string, t domain.DictionaryType) error {
	if !domain.IsValidDictionaryType(t) {
		return fmt.Errorf("%s: dictionary type %q: %w", op, t, domain.ErrInvalidInput)
	}
	return nil
}

// CreateDictionary creates a dictionary version of type t.
func (c *Client) CreateDictionary(ctx context.Context, t domain.DictionaryType, in DictionaryInput) (Dictionary, error) {
	const op = "create dictionary"
	if err := checkType(op, t); err != nil {
		return Dictionary{}, err
	}
	if in.State == "" {
		in.State = domain.StateNotPublished
	}

	var env dictionaryEnvelope
	if _, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		segments: []string{dictionariesPath, string(t), versionsPath},
		in:       in,
		out:      &env,
	}); err != nil {
		return Dictionary{}, err
	}
	if env.Info == nil {
		return Dictionary{}, fmt.Errorf("%s: %w: missing dictionary_info", op, domain.ErrMalformedBody)
	}
	return *env.Info, nil
}

// ListDictionaries lists the versions of dictionary type t.
func (c *Client) ListDictionaries(ctx context.Context, t domain.DictionaryType, opts ListOptions) (Page, error) {
	const op = "list dictionaries"
	if err := checkType(op, t); err != nil {
		return Page{}, err
	}
	return c.list(ctx, op, opts, dictionariesPath, string(t), versionsPath)
}

// GetDictionary fetches one dictionary version.
func (c *Client) GetDictionary(ctx context.Context, t domain.DictionaryType, version string) (Dictionary, error) {
	const op = "get dictionary"
	if err := checkType(op, t); err != nil {
		return Dictionary{}, err
	}

	var d Dictionary
	if _, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		segments: []string{dictionariesPath, string(t), versionsPath, version},
		out:      &d,
	}); err != nil {
		return Dictionary{}, err
	}
	return d, nil
}

// UpdateDictionary patches a dictionary version and returns the result.
func (c *Client) UpdateDictionary(ctx context.Context, t domain.DictionaryType, version string, upd DictionaryUpdate) (Dictionary, error) {
	const op = "update dictionary"
	if err := checkType(op, t); err != nil {
		return Dictionary{}, err
	}

	var env dictionaryEnvelope
	if _, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPatch,
		segments: []string{dictionariesPath, string(t), versionsPath, version},
		in:       upd,
		out:      &env,
	}); err != nil {
		return Dictionary{}, err
	}
	if env.Info == nil {
		return Dictionary{}, fmt.Errorf("%s: %w: missing dictionary_info", op, domain.ErrMalformedBody)
	}
	return *env.Info, nil
}

// DeleteDictionary removes a dictionary version.
func (c *Client) DeleteDictionary(ctx context.Context, t domain.DictionaryType, version string) error {
	const op = "delete dictionary"
	if err := checkType(op, t); err != nil {
		return err
	}
	_, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodDelete,
		segments: []string{dictionariesPath, string(t), versionsPath, version},
	})
	return err
}
