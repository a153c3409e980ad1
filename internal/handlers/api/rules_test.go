package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
)

// memoryRules is an in-memory RuleStore with case-insensitive uniqueness.
type memoryRules struct {
	blocked []models.BlockedKeyword
	subs    []models.KeywordSubstitution
}

func (m *memoryRules) ListBlockedKeywords(context.Context) ([]models.BlockedKeyword, error) {
	return m.blocked, nil
}

func (m *memoryRules) AddBlockedKeyword(_ context.Context, keyword string) (*models.BlockedKeyword, error) {
	for _, b := range m.blocked {
		if strings.EqualFold(b.Keyword, keyword) {
			return nil, db.ErrDuplicateBlocked
		}
	}
	b := models.BlockedKeyword{ID: uuid.New(), Keyword: keyword}
	m.blocked = append(m.blocked, b)
	return &b, nil
}

func (m *memoryRules) DeleteBlockedKeyword(_ context.Context, id uuid.UUID) error {
	for i, b := range m.blocked {
		if b.ID == id {
			m.blocked = append(m.blocked[:i], m.blocked[i+1:]...)
			return nil
		}
	}
	return db.ErrBlockedKeywordNotFound
}

func (m *memoryRules) ClearBlockedKeywords(context.Context) error {
	m.blocked = nil
	return nil
}

func (m *memoryRules) ImportBlockedKeywords(ctx context.Context, list []string) (models.ImportResult, error) {
	var r models.ImportResult
	for _, k := range list {
		if _, err := m.AddBlockedKeyword(ctx, k); err != nil {
			r.Duplicates++
		} else {
			r.Imported++
		}
	}
	return r, nil
}

func (m *memoryRules) ListKeywordSubstitutions(context.Context) ([]models.KeywordSubstitution, error) {
	return m.subs, nil
}

func (m *memoryRules) UpsertKeywordSubstitution(_ context.Context, original, replacement string) (*models.KeywordSubstitution, bool, error) {
	for i := range m.subs {
		if strings.EqualFold(m.subs[i].OriginalKeyword, original) {
			m.subs[i].OriginalKeyword = original
			m.subs[i].ReplacementKeyword = replacement
			s := m.subs[i]
			return &s, false, nil
		}
	}
	s := models.KeywordSubstitution{ID: uuid.New(), OriginalKeyword: original, ReplacementKeyword: replacement}
	m.subs = append(m.subs, s)
	return &s, true, nil
}

func (m *memoryRules) UpdateKeywordSubstitution(_ context.Context, id uuid.UUID, original, replacement string) error {
	idx := -1
	for i, s := range m.subs {
		if s.ID == id {
			idx = i
		} else if strings.EqualFold(s.OriginalKeyword, original) {
			return db.ErrDuplicateSubstitution
		}
	}
	if idx < 0 {
		return db.ErrSubstitutionNotFound
	}
	m.subs[idx].OriginalKeyword = original
	m.subs[idx].ReplacementKeyword = replacement
	return nil
}

func (m *memoryRules) DeleteKeywordSubstitution(_ context.Context, id uuid.UUID) error {
	for i, s := range m.subs {
		if s.ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return db.ErrSubstitutionNotFound
}

func (m *memoryRules) ClearKeywordSubstitutions(context.Context) error {
	m.subs = nil
	return nil
}

func (m *memoryRules) ImportKeywordSubstitutions(ctx context.Context, subs []keywords.Substitution) (models.ImportResult, error) {
	var r models.ImportResult
	for _, s := range subs {
		_, inserted, _ := m.UpsertKeywordSubstitution(ctx, s.Original, s.Replacement)
		if inserted {
			r.Imported++
		} else {
			r.Updated++
		}
	}
	return r, nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func newRulesApp(store *memoryRules) *fiber.App {
	h := NewRuleHandler(store, []string{"camera", "mm"})
	app := fiber.New()
	app.Get("/api/rules", h.List)
	app.Post("/api/rules/blocked", h.AddBlocked)
	app.Delete("/api/rules/blocked", h.ClearBlocked)
	app.Post("/api/rules/blocked/import", h.ImportBlocked)
	app.Delete("/api/rules/blocked/:id", h.DeleteBlocked)
	app.Post("/api/rules/substitutions", h.AddSubstitution)
	app.Delete("/api/rules/substitutions", h.ClearSubstitutions)
	app.Post("/api/rules/substitutions/import", h.ImportSubstitutions)
	app.Put("/api/rules/substitutions/:id", h.UpdateSubstitution)
	app.Delete("/api/rules/substitutions/:id", h.DeleteSubstitution)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, env
}

func TestAddBlocked(t *testing.T) {
	store := &memoryRules{}
	app := newRulesApp(store)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"new keyword", `{"keyword":" \"Nikon\" "}`, fiber.StatusCreated},
		{"case duplicate", `{"keyword":"NIKON"}`, fiber.StatusConflict},
		{"empty after cleaning", `{"keyword":"  ''  "}`, fiber.StatusBadRequest},
		{"invalid body", `{`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doJSON(t, app, "POST", "/api/rules/blocked", tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d (%s), want %d", status, env.Error, tt.wantStatus)
			}
		})
	}

	if len(store.blocked) != 1 || store.blocked[0].Keyword != "Nikon" {
		t.Errorf("blocked = %+v, want [Nikon]", store.blocked)
	}
}

func TestDeleteBlocked(t *testing.T) {
	store := &memoryRules{}
	b, _ := store.AddBlockedKeyword(context.Background(), "Sky")
	app := newRulesApp(store)

	if status, _ := doJSON(t, app, "DELETE", "/api/rules/blocked/not-a-uuid", ""); status != fiber.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", status)
	}
	if status, _ := doJSON(t, app, "DELETE", "/api/rules/blocked/"+b.ID.String(), ""); status != fiber.StatusOK {
		t.Errorf("delete status = %d, want 200", status)
	}
	if status, _ := doJSON(t, app, "DELETE", "/api/rules/blocked/"+b.ID.String(), ""); status != fiber.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", status)
	}
}

func TestImportBlocked(t *testing.T) {
	store := &memoryRules{}
	store.AddBlockedKeyword(context.Background(), "Sky")
	app := newRulesApp(store)

	status, env := doJSON(t, app, "POST", "/api/rules/blocked/import",
		`{"keywords":["Tree"],"text":"sky, Cloud\n\n'Sea'"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d (%s), want 200", status, env.Error)
	}

	var result models.ImportResult
	json.Unmarshal(env.Data, &result)
	if result.Imported != 3 || result.Duplicates != 1 {
		t.Errorf("import = %+v, want 3 imported, 1 duplicate", result)
	}

	if status, _ := doJSON(t, app, "POST", "/api/rules/blocked/import", `{"text":" , "}`); status != fiber.StatusBadRequest {
		t.Errorf("empty import status = %d, want 400", status)
	}
}

func TestClearBlocked(t *testing.T) {
	store := &memoryRules{}
	store.AddBlockedKeyword(context.Background(), "Sky")
	app := newRulesApp(store)

	if status, _ := doJSON(t, app, "DELETE", "/api/rules/blocked", ""); status != fiber.StatusOK {
		t.Errorf("clear status = %d, want 200", status)
	}
	if len(store.blocked) != 0 {
		t.Errorf("blocked = %v after clear", store.blocked)
	}
}

func TestSubstitutions(t *testing.T) {
	store := &memoryRules{}
	app := newRulesApp(store)

	status, _ := doJSON(t, app, "POST", "/api/rules/substitutions", `{"original":"NYC","replacement":"New York"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("add status = %d, want 201", status)
	}
	status, _ = doJSON(t, app, "POST", "/api/rules/substitutions", `{"original":"nyc","replacement":"New York City"}`)
	if status != fiber.StatusOK {
		t.Errorf("upsert status = %d, want 200", status)
	}
	if len(store.subs) != 1 || store.subs[0].ReplacementKeyword != "New York City" {
		t.Fatalf("subs = %+v, want one updated substitution", store.subs)
	}

	if status, _ := doJSON(t, app, "POST", "/api/rules/substitutions", `{"original":"LA"}`); status != fiber.StatusBadRequest {
		t.Errorf("missing replacement status = %d, want 400", status)
	}

	la, _, _ := store.UpsertKeywordSubstitution(context.Background(), "LA", "Los Angeles")

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"edit", la.ID.String(), `{"original":"L.A.","replacement":"Los Angeles"}`, fiber.StatusOK},
		{"clash", la.ID.String(), `{"original":"NYC","replacement":"x"}`, fiber.StatusConflict},
		{"unknown", uuid.New().String(), `{"original":"a","replacement":"b"}`, fiber.StatusNotFound},
		{"bad id", "nope", `{"original":"a","replacement":"b"}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doJSON(t, app, "PUT", "/api/rules/substitutions/"+tt.id, tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d (%s), want %d", status, env.Error, tt.wantStatus)
			}
		})
	}

	if status, _ := doJSON(t, app, "DELETE", "/api/rules/substitutions/"+la.ID.String(), ""); status != fiber.StatusOK {
		t.Errorf("delete status = %d, want 200", status)
	}
	if status, _ := doJSON(t, app, "DELETE", "/api/rules/substitutions", ""); status != fiber.StatusOK {
		t.Errorf("clear status = %d, want 200", status)
	}
	if len(store.subs) != 0 {
		t.Errorf("subs = %v after clear", store.subs)
	}
}

func TestImportSubstitutions(t *testing.T) {
	store := &memoryRules{}
	store.UpsertKeywordSubstitution(context.Background(), "NYC", "New York")
	app := newRulesApp(store)

	status, env := doJSON(t, app, "POST", "/api/rules/substitutions/import",
		`{"substitutions":[{"original":"UK","replacement":"United Kingdom"}],"text":"nyc => New York City\nbroken line\nSF\tSan Francisco"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d (%s), want 200", status, env.Error)
	}

	var result models.ImportResult
	json.Unmarshal(env.Data, &result)
	if result.Imported != 2 || result.Updated != 1 {
		t.Errorf("import = %+v, want 2 imported, 1 updated", result)
	}
}

func TestListRules(t *testing.T) {
	store := &memoryRules{}
	app := newRulesApp(store)

	status, env := doJSON(t, app, "GET", "/api/rules", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var rules models.RulesResponse
	if err := json.Unmarshal(env.Data, &rules); err != nil {
		t.Fatalf("invalid rules payload: %v", err)
	}
	if rules.Blocked == nil || rules.Substitutions == nil {
		t.Error("empty lists should encode as [] not null")
	}
	if len(rules.ExcludedSubstrings) != 2 {
		t.Errorf("excluded = %v, want 2 entries", rules.ExcludedSubstrings)
	}
}
