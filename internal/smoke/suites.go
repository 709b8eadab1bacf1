package smoke

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
)

// Built-in suite names, in the order they run by default.
const (
	SuiteHealth       = "health"
	SuiteDictionary   = "dictionary"
	SuiteContent      = "content"
	SuiteCustomScript = "customscript"
	SuiteVnV          = "vnv"
)

// SuiteNames lists the built-in suites in default order.
func SuiteNames() []string {
	return []string{SuiteHealth, SuiteDictionary, SuiteContent, SuiteCustomScript, SuiteVnV}
}

// fixture carries the per-run identifiers every built-in suite derives its
// resource names from.
type fixture struct {
	api API
	id  string // decimal, unique per run
}

func newFixture(api API, runID domain.RunID) (fixture, error) {
	n, err := runID.Numeric()
	if err != nil {
		return fixture{}, err
	}
	return fixture{api: api, id: strconv.FormatUint(uint64(n), 10)}, nil
}

// dictionaryVersion is a version string unique to the run, e.g.
// "1.0.1427014656". Suites that may run concurrently use distinct majors.
func (f fixture) dictionaryVersion(major int) string {
	return strconv.Itoa(major) + ".0." + f.id
}

// BuiltinSuites returns the named built-in suites, or all of them when
// names is empty. Unknown names and a zero runID fail with
// domain.ErrInvalidInput.
func BuiltinSuites(api API, runID domain.RunID, names ...string) ([]Suite, error) {
	f, err := newFixture(api, runID)
	if err != nil {
		return nil, err
	}
	builders := map[string]func() Suite{
		SuiteHealth:       f.healthSuite,
		SuiteDictionary:   f.dictionarySuite,
		SuiteContent:      f.contentSuite,
		SuiteCustomScript: f.customScriptSuite,
		SuiteVnV:          f.vnvSuite,
	}

	if len(names) == 0 {
		names = SuiteNames()
	}
	seen := make(map[string]bool, len(names))
	suites := make([]Suite, 0, len(names))
	for _, name := range names {
		build, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown suite %q (have %v)", domain.ErrInvalidInput, name, SuiteNames())
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		suites = append(suites, build())
	}
	return suites, nil
}

func (f fixture) healthSuite() Suite {
	return Suite{
		Name: SuiteHealth,
		Steps: []Step{
			{Name: "health reports OK", Run: func(ctx context.Context) error {
				h, err := f.api.Health(ctx)
				if err != nil {
					return err
				}
				if err := checkEqual("status", "OK", h.Status); err != nil {
					return err
				}
				if len(h.Fields) != 1 {
					return checkf("health response has %d fields, want exactly status", len(h.Fields))
				}
				return nil
			}},
		},
	}
}

func (f fixture) dictionarySuite() Suite {
	version := f.dictionaryVersion(1)
	t := domain.DictionaryTypeSSE

	return Suite{
		Name:         SuiteDictionary,
		RequiresAuth: true,
		Steps: []Step{
			{Name: "create dictionary", Run: func(ctx context.Context) error {
				d, err := f.api.CreateDictionary(ctx, t, dictclient.DictionaryInput{
					Description: "Test Dictionary " + f.id,
					Version:     version,
					State:       domain.StateNotPublished,
				})
				if err != nil {
					return ignoreConflict(err)
				}
				if err := checkEqual("dictionary_version", version, d.Version); err != nil {
					return err
				}
				return checkEqual("state", domain.StateNotPublished, d.State)
			}},
			{Name: "list dictionaries", Run: func(ctx context.Context) error {
				page, err := f.api.ListDictionaries(ctx, t, dictclient.ListOptions{})
				if err != nil {
					return err
				}
				if len(page.Items) == 0 {
					return checkf("no %s dictionaries listed", t)
				}
				if page.HasTotal && page.Total < len(page.Items) {
					return checkf("total count %d below page size %d", page.Total, len(page.Items))
				}
				return nil
			}},
			{Name: "get dictionary", Run: func(ctx context.Context) error {
				d, err := f.api.GetDictionary(ctx, t, version)
				if err != nil {
					return err
				}
				if err := checkEqual("dictionary_type", t, d.Type); err != nil {
					return err
				}
				return checkEqual("dictionary_version", version, d.Version)
			}},
			{Name: "update dictionary", Run: func(ctx context.Context) error {
				desc := "Updated Test Dictionary " + f.id
				d, err := f.api.UpdateDictionary(ctx, t, version, dictclient.DictionaryUpdate{
					Description: desc,
					State:       domain.StatePublished,
				})
				if err != nil {
					return err
				}
				if err := checkEqual("dictionary_description", desc, d.Description); err != nil {
					return err
				}
				return checkEqual("state", domain.StatePublished, d.State)
			}},
			{Name: "missing dictionary is 404", Run: func(ctx context.Context) error {
				_, err := f.api.GetDictionary(ctx, domain.DictionaryTypeFlight, "9.9."+f.id)
				return expectStatus(err, domain.ErrNotFound)
			}},
			{Name: "delete dictionary", Run: func(ctx context.Context) error {
				if err := f.api.DeleteDictionary(ctx, t, version); err != nil {
					return err
				}
				_, err := f.api.GetDictionary(ctx, t, version)
				return expectStatus(err, domain.ErrNotFound)
			}},
		},
		Teardown: func(ctx context.Context) error {
			return ignoreNotFound(f.api.DeleteDictionary(ctx, t, version))
		},
	}
}
