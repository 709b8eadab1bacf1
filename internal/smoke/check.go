package smoke

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
)

func checkf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCheckFailed, fmt.Sprintf(format, args...))
}

func checkEqual(field string, want, got any) error {
	if !reflect.DeepEqual(want, got) {
		return checkf("%s: want %v, got %v", field, want, got)
	}
	return nil
}

// checkFields compares every field of want against doc. Numbers decoded
// from JSON are float64, so numeric fields are compared by value.
func checkFields(doc, want dictclient.Document) error {
	for k, w := range want {
		g, ok := doc[k]
		if !ok {
			return checkf("field %s missing", k)
		}
		if wn, ok := toFloat(w); ok {
			if gn, ok := toFloat(g); ok && wn == gn {
				continue
			}
		}
		if !reflect.DeepEqual(normalize(w), normalize(g)) {
			return checkf("field %s: want %v, got %v", k, w, g)
		}
	}
	return nil
}

// expectStatus passes when err wraps want, and fails otherwise.
func expectStatus(err, want error) error {
	if err == nil {
		return checkf("want %v, got success", want)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("want %v: %w", want, err)
	}
	return nil
}

// ignoreConflict treats "already exists" as success. The create steps
// accept 409 so that rerunning with a fixed run ID still passes.
func ignoreConflict(err error) error {
	if domain.IsConflict(err) {
		return nil
	}
	return err
}

func ignoreNotFound(err error) error {
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// normalize maps typed slices and maps onto the shapes encoding/json
// decodes into, so literals in suite fixtures compare against responses.
func normalize(v any) any {
	switch x := v.(type) {
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case dictclient.Document:
		return map[string]any(x)
	case []dictclient.Document:
		out := make([]any, len(x))
		for i, d := range x {
			out[i] = map[string]any(d)
		}
		return out
	}
	return v
}
