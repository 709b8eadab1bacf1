package smoke

import (
	"context"

	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
)

// collectionSuite describes the create/list/get/update/bulk/404/delete
// sequence shared by content, custom scripts and verification items.
type collectionSuite struct {
	name     string
	noun     string
	keyField string
	key      string
	missing  string
	item     dictclient.Document
	patch    dictclient.Document
	listOpts dictclient.ListOptions
	// listAll checks every listed item carries these fields.
	listAll dictclient.Document

	create func(context.Context, []dictclient.Document) ([]dictclient.Document, error)
	list   func(context.Context, dictclient.ListOptions) (dictclient.Page, error)
	get    func(context.Context, string) (dictclient.Document, error)
	update func(context.Context, string, dictclient.Document) (dictclient.Document, error)
	del    func(context.Context, string) error
	bulk   func(context.Context, []string) ([]dictclient.Document, error)
}

func (c collectionSuite) suite() Suite {
	return Suite{
		Name:         c.name,
		RequiresAuth: true,
		Steps: []Step{
			{Name: "create " + c.noun, Run: c.stepCreate},
			{Name: "list " + c.noun + "s", Run: c.stepList},
			{Name: "get " + c.noun, Run: c.stepGet},
			{Name: "update " + c.noun, Run: c.stepUpdate},
			{Name: "bulk query " + c.noun + "s", Run: c.stepBulk},
			{Name: "missing " + c.noun + " is 404", Run: func(ctx context.Context) error {
				_, err := c.get(ctx, c.missing)
				return expectStatus(err, domain.ErrNotFound)
			}},
			{Name: "delete " + c.noun, Run: c.stepDelete},
		},
		Teardown: func(ctx context.Context) error {
			return ignoreNotFound(c.del(ctx, c.key))
		},
	}
}

func (c collectionSuite) stepCreate(ctx context.Context) error {
	out, err := c.create(ctx, []dictclient.Document{c.item})
	if err != nil {
		return ignoreConflict(err)
	}
	if len(out) != 1 {
		return checkf("created %d items, want 1", len(out))
	}
	return checkEqual(c.keyField, c.key, out[0].String(c.keyField))
}

func (c collectionSuite) stepList(ctx context.Context) error {
	page, err := c.list(ctx, c.listOpts)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return checkf("no %ss listed", c.noun)
	}
	for _, doc := range page.Items {
		if err := checkFields(doc, c.listAll); err != nil {
			return err
		}
	}
	return nil
}

func (c collectionSuite) stepGet(ctx context.Context) error {
	doc, err := c.get(ctx, c.key)
	if err != nil {
		return err
	}
	return checkEqual(c.keyField, c.key, doc.String(c.keyField))
}

func (c collectionSuite) stepUpdate(ctx context.Context) error {
	doc, err := c.update(ctx, c.key, c.patch)
	if err != nil {
		return err
	}
	return checkFields(doc, c.patch)
}

// stepBulk asks for the item plus one unknown key; only the item comes back.
func (c collectionSuite) stepBulk(ctx context.Context) error {
	out, err := c.bulk(ctx, []string{c.key, c.missing})
	if err != nil {
		return err
	}
	if len(out) != 1 {
		return checkf("bulk query returned %d items, want 1", len(out))
	}
	return checkEqual(c.keyField, c.key, out[0].String(c.keyField))
}

func (c collectionSuite) stepDelete(ctx context.Context) error {
	if err := c.del(ctx, c.key); err != nil {
		return err
	}
	_, err := c.get(ctx, c.key)
	return expectStatus(err, domain.ErrNotFound)
}

func (f fixture) contentSuite() Suite {
	ref := dictclient.ContentRef{
		Type:    domain.DictionaryTypeSSE,
		Version: f.dictionaryVersion(2),
		Kind:    domain.ContentCommands,
	}
	stem := "TEST_CMD_" + f.id

	c := collectionSuite{
		name:     SuiteContent,
		noun:     "command",
		keyField: ref.KeyField(),
		key:      stem,
		missing:  "MISSING_CMD_" + f.id,
		item: dictclient.Document{
			"command_stem":        stem,
			"operations_category": "TEST_CATEGORY",
			"cmd_description":     "Test command description - " + f.id,
			"restricted_modes":    []string{"MODE1", "MODE2"},
			"cmd_type":            "FSW",
			"repeat_min":          0,
			"repeat_max":          5,
			"arguments": []dictclient.Document{
				{
					"argument_type":        "INT",
					"argument_size":        4,
					"argument_description": "Test integer argument",
					"repeat_arg":           "No",
					"allowable_ranges": []dictclient.Document{
						{"min_value": "0", "max_value": "100"},
					},
				},
				{
					"argument_type":        "STRING",
					"argument_size":        20,
					"argument_description": "Test string argument",
					"repeat_arg":           "No",
				},
			},
		},
		patch: dictclient.Document{
			"cmd_description":     "Updated command description - " + f.id,
			"operations_category": "UPDATED_CATEGORY",
			"restricted_modes":    []string{"MODE1", "MODE2", "MODE3"},
		},
		listOpts: dictclient.ListOptions{Filters: map[string]string{ref.KeyField(): stem}},
		listAll:  dictclient.Document{ref.KeyField(): stem},

		create: func(ctx context.Context, items []dictclient.Document) ([]dictclient.Document, error) {
			return f.api.CreateContent(ctx, ref, items)
		},
		list: func(ctx context.Context, opts dictclient.ListOptions) (dictclient.Page, error) {
			return f.api.ListContent(ctx, ref, opts)
		},
		get: func(ctx context.Context, key string) (dictclient.Document, error) {
			return f.api.GetContent(ctx, ref, key)
		},
		update: func(ctx context.Context, key string, patch dictclient.Document) (dictclient.Document, error) {
			return f.api.UpdateContent(ctx, ref, key, patch)
		},
		del: func(ctx context.Context, key string) error {
			return f.api.DeleteContent(ctx, ref, key)
		},
		bulk: func(ctx context.Context, keys []string) ([]dictclient.Document, error) {
			return f.api.BulkQueryContent(ctx, ref, keys)
		},
	}

	s := c.suite()
	// Content lives inside a dictionary version owned by this suite.
	s.Setup = func(ctx context.Context) error {
		_, err := f.api.CreateDictionary(ctx, ref.Type, dictclient.DictionaryInput{
			Description: "Test Dictionary for Content - " + f.id,
			Version:     ref.Version,
			State:       domain.StateNotPublished,
		})
		return ignoreConflict(err)
	}
	itemTeardown := s.Teardown
	s.Teardown = func(ctx context.Context) error {
		if err := itemTeardown(ctx); err != nil {
			return err
		}
		return ignoreNotFound(f.api.DeleteDictionary(ctx, ref.Type, ref.Version))
	}
	return s
}

func (f fixture) customScriptSuite() Suite {
	id := "test_script_" + f.id
	return collectionSuite{
		name:     SuiteCustomScript,
		noun:     "custom script",
		keyField: "script_id",
		key:      id,
		missing:  "nonexistent_script_" + f.id,
		item: dictclient.Document{
			"script_id":   id,
			"script_path": "/test/path/script_" + f.id + ".py",
			"script_name": "Test Script " + f.id,
			"description": "Test custom script description - " + f.id,
			"hash":        "abc123hash" + f.id,
			"status":      "ACTIVE",
			"inputs": []dictclient.Document{{
				"name":           "test_input",
				"description":    "Test input parameter",
				"phase":          "EXECUTION",
				"input_required": "YES",
				"type":           "STRING",
				"default_value":  "test_default",
			}},
			"outputs": []dictclient.Document{{
				"name":        "test_output",
				"description": "Test output parameter",
				"type":        "STRING",
			}},
			"entries": []dictclient.Document{},
			"layout":  []dictclient.Document{},
		},
		patch: dictclient.Document{
			"script_name": "Updated Test Script " + f.id,
			"description": "Updated description - " + f.id,
			"status":      "INACTIVE",
		},
		listOpts: dictclient.ListOptions{Filters: map[string]string{"status": "ACTIVE"}},
		listAll:  dictclient.Document{"status": "ACTIVE"},

		create: f.api.CreateCustomScripts,
		list:   f.api.ListCustomScripts,
		get:    f.api.GetCustomScript,
		update: f.api.UpdateCustomScript,
		del:    f.api.DeleteCustomScript,
		bulk:   f.api.BulkQueryCustomScripts,
	}.suite()
}

func (f fixture) vnvSuite() Suite {
	id := "TEST_VI_" + f.id
	return collectionSuite{
		name:     SuiteVnV,
		noun:     "verification item",
		keyField: "vi_id",
		key:      id,
		missing:  "MISSING_VI_" + f.id,
		item: dictclient.Document{
			"vi_id":    id,
			"vi_name":  "Test Item " + f.id,
			"vi_owner": "Test Owner",
			"vi_type":  "Requirement",
			"vi_text":  "Simple test verification item",
			"vas":      []string{"TEST_VA_" + f.id},
			"vacs":     []string{"TEST_VAC_" + f.id},
		},
		patch: dictclient.Document{
			"vi_text":  "Updated verification item text - " + f.id,
			"vi_type":  "Updated Requirement",
			"vi_owner": "Updated Test Owner",
		},

		create: f.api.CreateVerificationItems,
		list:   f.api.ListVerificationItems,
		get:    f.api.GetVerificationItem,
		update: f.api.UpdateVerificationItem,
		del:    f.api.DeleteVerificationItem,
		bulk:   f.api.BulkQueryVerificationItems,
	}.suite()
}
