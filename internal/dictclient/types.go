package dictclient

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Document is an untyped JSON object. Scripts, content and verification
// items are carried as documents; only fields the smoke suites assert on
// are read.
type Document map[string]any

// String returns the string field key, or "" when absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// ListOptions are the query parameters shared by every list endpoint.
// Zero values are omitted so the service defaults apply (limit 20,
// offset 0, ascending).
type ListOptions struct {
	Limit  int
	Offset int
	Sort   string // "asc" or "desc"
	// Wild switches filters from exact match to case-insensitive contains.
	Wild bool
	// Filters are endpoint-specific field filters, e.g. command_stem or status.
	Filters map[string]string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Wild {
		v.Set("wild", "true")
	}
	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, o.Filters[k])
	}
	return v
}

// Page is one page of a list call.
type Page struct {
	Items []Document
	// Total is the x-total-count header value; HasTotal is false when the
	// service did not send it.
	Total    int
	HasTotal bool
}

// Health is the /health response.
type Health struct {
	Status string
	// Fields is the raw response object.
	Fields Document
}

// DictionaryInput creates a dictionary version.
type DictionaryInput struct {
	Description string                 `json:"dictionary_description"`
	Version     string                 `json:"dictionary_version"`
	State       domain.DictionaryState `json:"state"`
}

// DictionaryUpdate patches a dictionary version. Empty fields are not sent.
type DictionaryUpdate struct {
	Description string                 `json:"dictionary_description,omitempty"`
	State       domain.DictionaryState `json:"state,omitempty"`
}

// Dictionary is a dictionary version as returned by the service.
type Dictionary struct {
	Type        domain.DictionaryType  `json:"dictionary_type"`
	Version     string                 `json:"dictionary_version"`
	Description string                 `json:"dictionary_description"`
	State       domain.DictionaryState `json:"state"`
}

// dictionaryEnvelope wraps create and update responses.
type dictionaryEnvelope struct {
	Info *Dictionary `json:"dictionary_info"`
}
