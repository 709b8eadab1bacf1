package smoke_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
)

// fakeAPI is an in-memory dictionary service.
type fakeAPI struct {
	mu     sync.Mutex
	health dictclient.Document
	dicts  map[string]dictclient.Dictionary
	// docs maps collection name to key to document.
	docs map[string]map[string]dictclient.Document
	// fail forces an error from the named method.
	fail map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		health: dictclient.Document{"status": "OK"},
		dicts:  map[string]dictclient.Dictionary{},
		docs:   map[string]map[string]dictclient.Document{},
		fail:   map[string]error{},
	}
}

const (
	scriptsCollection = "custom_scripts"
	visCollection     = "vnv/vis"
)

func dictKey(t domain.DictionaryType, version string) string {
	return string(t) + "/" + version
}

func contentCollection(ref dictclient.ContentRef) string {
	return dictKey(ref.Type, ref.Version) + "/" + string(ref.Kind)
}

// size returns the number of stored dictionaries and documents.
func (f *fakeAPI) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.dicts)
	for _, c := range f.docs {
		n += len(c)
	}
	return n
}

func (f *fakeAPI) forced(method string) error {
	return f.fail[method]
}

func (f *fakeAPI) Health(context.Context) (dictclient.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.forced("Health"); err != nil {
		return dictclient.Health{}, err
	}
	return dictclient.Health{Status: f.health.String("status"), Fields: maps.Clone(f.health)}, nil
}

func (f *fakeAPI) CreateDictionary(_ context.Context, t domain.DictionaryType, in dictclient.DictionaryInput) (dictclient.Dictionary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.forced("CreateDictionary"); err != nil {
		return dictclient.Dictionary{}, err
	}
	k := dictKey(t, in.Version)
	if _, ok := f.dicts[k]; ok {
		return dictclient.Dictionary{}, domain.ErrConflict
	}
	d := dictclient.Dictionary{Type: t, Version: in.Version, Description: in.Description, State: in.State}
	f.dicts[k] = d
	return d, nil
}

func (f *fakeAPI) ListDictionaries(_ context.Context, t domain.DictionaryType, _ dictclient.ListOptions) (dictclient.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []dictclient.Document
	for _, d := range f.dicts {
		if d.Type == t {
			items = append(items, dictclient.Document{"dictionary_version": d.Version})
		}
	}
	return dictclient.Page{Items: items, Total: len(items), HasTotal: true}, nil
}

func (f *fakeAPI) GetDictionary(_ context.Context, t domain.DictionaryType, version string) (dictclient.Dictionary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dicts[dictKey(t, version)]
	if !ok {
		return dictclient.Dictionary{}, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeAPI) UpdateDictionary(_ context.Context, t domain.DictionaryType, version string, upd dictclient.DictionaryUpdate) (dictclient.Dictionary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dictKey(t, version)
	d, ok := f.dicts[k]
	if !ok {
		return dictclient.Dictionary{}, domain.ErrNotFound
	}
	if upd.Description != "" {
		d.Description = upd.Description
	}
	if upd.State != "" {
		d.State = upd.State
	}
	f.dicts[k] = d
	return d, nil
}

func (f *fakeAPI) DeleteDictionary(_ context.Context, t domain.DictionaryType, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dictKey(t, version)
	if _, ok := f.dicts[k]; !ok {
		return domain.ErrNotFound
	}
	delete(f.dicts, k)
	return nil
}

// Generic collection operations.

func (f *fakeAPI) create(collection, keyField string, items []dictclient.Document) ([]dictclient.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.docs[collection]
	if c == nil {
		c = map[string]dictclient.Document{}
		f.docs[collection] = c
	}
	for _, it := range items {
		if _, ok := c[it.String(keyField)]; ok {
			return nil, domain.ErrConflict
		}
	}
	out := make([]dictclient.Document, 0, len(items))
	for _, it := range items {
		c[it.String(keyField)] = maps.Clone(it)
		out = append(out, maps.Clone(it))
	}
	return out, nil
}

func (f *fakeAPI) list(collection string, opts dictclient.ListOptions) (dictclient.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := slices.Sorted(maps.Keys(f.docs[collection]))
	items := []dictclient.Document{}
	for _, k := range keys {
		doc := f.docs[collection][k]
		match := true
		for field, want := range opts.Filters {
			if doc.String(field) != want {
				match = false
			}
		}
		if match {
			items = append(items, maps.Clone(doc))
		}
	}
	return dictclient.Page{Items: items, Total: len(items), HasTotal: true}, nil
}

func (f *fakeAPI) get(collection, key string) (dictclient.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[collection][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
	}
	return maps.Clone(doc), nil
}

func (f *fakeAPI) update(collection, key string, patch dictclient.Document) (dictclient.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[collection][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	maps.Copy(doc, patch)
	return maps.Clone(doc), nil
}

func (f *fakeAPI) remove(collection, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[collection][key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs[collection], key)
	return nil
}

func (f *fakeAPI) bulk(collection string, keys []string) ([]dictclient.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []dictclient.Document{}
	for _, k := range keys {
		if doc, ok := f.docs[collection][k]; ok {
			out = append(out, maps.Clone(doc))
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateContent(_ context.Context, ref dictclient.ContentRef, items []dictclient.Document) ([]dictclient.Document, error) {
	f.mu.Lock()
	_, ok := f.dicts[dictKey(ref.Type, ref.Version)]
	f.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f.create(contentCollection(ref), ref.KeyField(), items)
}

func (f *fakeAPI) ListContent(_ context.Context, ref dictclient.ContentRef, opts dictclient.ListOptions) (dictclient.Page, error) {
	return f.list(contentCollection(ref), opts)
}

func (f *fakeAPI) GetContent(_ context.Context, ref dictclient.ContentRef, key string) (dictclient.Document, error) {
	return f.get(contentCollection(ref), key)
}

func (f *fakeAPI) UpdateContent(_ context.Context, ref dictclient.ContentRef, key string, patch dictclient.Document) (dictclient.Document, error) {
	return f.update(contentCollection(ref), key, patch)
}

func (f *fakeAPI) DeleteContent(_ context.Context, ref dictclient.ContentRef, key string) error {
	return f.remove(contentCollection(ref), key)
}

func (f *fakeAPI) BulkQueryContent(_ context.Context, ref dictclient.ContentRef, keys []string) ([]dictclient.Document, error) {
	return f.bulk(contentCollection(ref), keys)
}

func (f *fakeAPI) CreateCustomScripts(_ context.Context, items []dictclient.Document) ([]dictclient.Document, error) {
	return f.create(scriptsCollection, "script_id", items)
}

func (f *fakeAPI) ListCustomScripts(_ context.Context, opts dictclient.ListOptions) (dictclient.Page, error) {
	return f.list(scriptsCollection, opts)
}

func (f *fakeAPI) GetCustomScript(_ context.Context, id string) (dictclient.Document, error) {
	return f.get(scriptsCollection, id)
}

func (f *fakeAPI) UpdateCustomScript(_ context.Context, id string, patch dictclient.Document) (dictclient.Document, error) {
	return f.update(scriptsCollection, id, patch)
}

func (f *fakeAPI) DeleteCustomScript(_ context.Context, id string) error {
	return f.remove(scriptsCollection, id)
}

func (f *fakeAPI) BulkQueryCustomScripts(_ context.Context, ids []string) ([]dictclient.Document, error) {
	return f.bulk(scriptsCollection, ids)
}

func (f *fakeAPI) CreateVerificationItems(_ context.Context, items []dictclient.Document) ([]dictclient.Document, error) {
	return f.create(visCollection, "vi_id", items)
}

func (f *fakeAPI) ListVerificationItems(_ context.Context, opts dictclient.ListOptions) (dictclient.Page, error) {
	return f.list(visCollection, opts)
}

func (f *fakeAPI) GetVerificationItem(_ context.Context, id string) (dictclient.Document, error) {
	return f.get(visCollection, id)
}

func (f *fakeAPI) UpdateVerificationItem(_ context.Context, id string, patch dictclient.Document) (dictclient.Document, error) {
	return f.update(visCollection, id, patch)
}

func (f *fakeAPI) DeleteVerificationItem(_ context.Context, id string) error {
	return f.remove(visCollection, id)
}

func (f *fakeAPI) BulkQueryVerificationItems(_ context.Context, ids []string) ([]dictclient.Document, error) {
	return f.bulk(visCollection, ids)
}
