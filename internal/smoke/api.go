package smoke

import (
	"context"

	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
)

// API is the dictionary service surface the built-in suites exercise.
// *dictclient.Client implements it.
type API interface {
	Health(ctx context.Context) (dictclient.Health, error)

	CreateDictionary(ctx context.Context, t domain.DictionaryType, in dictclient.DictionaryInput) (dictclient.Dictionary, error)
	ListDictionaries(ctx context.Context, t domain.DictionaryType, opts dictclient.ListOptions) (dictclient.Page, error)
	GetDictionary(ctx context.Context, t domain.DictionaryType, version string) (dictclient.Dictionary, error)
	UpdateDictionary(ctx context.Context, t domain.DictionaryType, version string, upd dictclient.DictionaryUpdate) (dictclient.Dictionary, error)
	DeleteDictionary(ctx context.Context, t domain.DictionaryType, version string) error

	CreateContent(ctx context.Context, ref dictclient.ContentRef, items []dictclient.Document) ([]dictclient.Document, error)
	ListContent(ctx context.Context, ref dictclient.ContentRef, opts dictclient.ListOptions) (dictclient.Page, error)
	GetContent(ctx context.Context, ref dictclient.ContentRef, key string) (dictclient.Document, error)
	UpdateContent(ctx context.Context, ref dictclient.ContentRef, key string, patch dictclient.Document) (dictclient.Document, error)
	DeleteContent(ctx context.Context, ref dictclient.ContentRef, key string) error
	BulkQueryContent(ctx context.Context, ref dictclient.ContentRef, keys []string) ([]dictclient.Document, error)

	CreateCustomScripts(ctx context.Context, scripts []dictclient.Document) ([]dictclient.Document, error)
	ListCustomScripts(ctx context.Context, opts dictclient.ListOptions) (dictclient.Page, error)
	GetCustomScript(ctx context.Context, id string) (dictclient.Document, error)
	UpdateCustomScript(ctx context.Context, id string, patch dictclient.Document) (dictclient.Document, error)
	DeleteCustomScript(ctx context.Context, id string) error
	BulkQueryCustomScripts(ctx context.Context, ids []string) ([]dictclient.Document, error)

	CreateVerificationItems(ctx context.Context, items []dictclient.Document) ([]dictclient.Document, error)
	ListVerificationItems(ctx context.Context, opts dictclient.ListOptions) (dictclient.Page, error)
	GetVerificationItem(ctx context.Context, id string) (dictclient.Document, error)
	UpdateVerificationItem(ctx context.Context, id string, patch dictclient.Document) (dictclient.Document, error)
	DeleteVerificationItem(ctx context.Context, id string) error
	BulkQueryVerificationItems(ctx context.Context, ids []string) ([]dictclient.Document, error)
}

var _ API = (*dictclient.Client)(nil)
