package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/template/html/v3"
	"github.com/google/uuid"

	"tagmaker/internal/config"
	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
	"tagmaker/internal/tagging"
	"tagmaker/views"
)

type memoryStore struct {
	blocked []models.BlockedKeyword
	subs    []models.KeywordSubstitution
}

func (m *memoryStore) ListBlockedKeywords(context.Context) ([]models.BlockedKeyword, error) {
	return m.blocked, nil
}

func (m *memoryStore) AddBlockedKeyword(_ context.Context, keyword string) (*models.BlockedKeyword, error) {
	for _, b := range m.blocked {
		if strings.EqualFold(b.Keyword, keyword) {
			return nil, db.ErrDuplicateBlocked
		}
	}
	b := models.BlockedKeyword{ID: uuid.New(), Keyword: keyword}
	m.blocked = append(m.blocked, b)
	return &b, nil
}

func (m *memoryStore) DeleteBlockedKeyword(_ context.Context, id uuid.UUID) error {
	for i, b := range m.blocked {
		if b.ID == id {
			m.blocked = append(m.blocked[:i], m.blocked[i+1:]...)
			return nil
		}
	}
	return db.ErrBlockedKeywordNotFound
}

func (m *memoryStore) ClearBlockedKeywords(context.Context) error {
	m.blocked = nil
	return nil
}

func (m *memoryStore) ImportBlockedKeywords(ctx context.Context, list []string) (models.ImportResult, error) {
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

func (m *memoryStore) ListKeywordSubstitutions(context.Context) ([]models.KeywordSubstitution, error) {
	return m.subs, nil
}

func (m *memoryStore) UpsertKeywordSubstitution(_ context.Context, original, replacement string) (*models.KeywordSubstitution, bool, error) {
	for i := range m.subs {
		if strings.EqualFold(m.subs[i].OriginalKeyword, original) {
			m.subs[i].ReplacementKeyword = replacement
			return &m.subs[i], false, nil
		}
	}
	m.subs = append(m.subs, models.KeywordSubstitution{ID: uuid.New(), OriginalKeyword: original, ReplacementKeyword: replacement})
	return &m.subs[len(m.subs)-1], true, nil
}

func (m *memoryStore) UpdateKeywordSubstitution(_ context.Context, id uuid.UUID, original, replacement string) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].OriginalKeyword = original
			m.subs[i].ReplacementKeyword = replacement
			return nil
		}
	}
	return db.ErrSubstitutionNotFound
}

func (m *memoryStore) DeleteKeywordSubstitution(_ context.Context, id uuid.UUID) error {
	for i, s := range m.subs {
		if s.ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return db.ErrSubstitutionNotFound
}

func (m *memoryStore) ClearKeywordSubstitutions(context.Context) error {
	m.subs = nil
	return nil
}

func (m *memoryStore) ImportKeywordSubstitutions(ctx context.Context, subs []keywords.Substitution) (models.ImportResult, error) {
	var r models.ImportResult
	for _, s := range subs {
		if _, inserted, _ := m.UpsertKeywordSubstitution(ctx, s.Original, s.Replacement); inserted {
			r.Imported++
		} else {
			r.Updated++
		}
	}
	return r, nil
}

type fakePreviewer struct {
	err error
}

func (f fakePreviewer) Preview(context.Context, uuid.UUID) (*tagging.Preview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tagging.Preview{
		Attachment: &models.Attachment{FilePath: "/uploads/beach.jpg"},
		Raw:        []string{"Sky", "Tree"},
		Filtered:   []string{"Tree"},
		Decisions: []keywords.Decision{
			{Raw: "Sky", Disposition: keywords.Blocked, Rule: "sky"},
			{Raw: "Tree", Keyword: "Tree", Disposition: keywords.Kept},
		},
	}, nil
}

func newAdminApp(store *memoryStore, previewer Previewer) *fiber.App {
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
	})

	h := NewAdminHandler(store, previewer, config.Settings{TagMode: models.TagModeAppend}, []string{"camera"})
	app.Get("/admin", h.Index)
	app.Get("/admin/preview", h.Preview)
	app.Post("/admin/blocked", h.AddBlocked)
	app.Post("/admin/blocked/import", h.ImportBlocked)
	app.Post("/admin/blocked/clear", h.ClearBlocked)
	app.Delete("/admin/blocked/:id", h.DeleteBlocked)
	app.Post("/admin/substitutions", h.AddSubstitution)
	app.Post("/admin/substitutions/import", h.ImportSubstitutions)
	app.Post("/admin/substitutions/clear", h.ClearSubstitutions)
	app.Put("/admin/substitutions/:id", h.UpdateSubstitution)
	app.Delete("/admin/substitutions/:id", h.DeleteSubstitution)
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, form url.Values) string {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, _ := http.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("%s %s: status = %d, want 200", method, path, resp.StatusCode)
	}
	out, _ := io.ReadAll(resp.Body)
	return string(out)
}

func TestAdminIndex(t *testing.T) {
	store := &memoryStore{}
	store.AddBlockedKeyword(context.Background(), "Nikon")
	store.UpsertKeywordSubstitution(context.Background(), "NYC", "New York")
	app := newAdminApp(store, fakePreviewer{})

	body := send(t, app, "GET", "/admin", nil)
	for _, want := range []string{"Nikon", "New York", "<code>camera</code>", "<html"} {
		if !strings.Contains(body, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestAdminBlockedPartials(t *testing.T) {
	store := &memoryStore{}
	app := newAdminApp(store, fakePreviewer{})

	body := send(t, app, "POST", "/admin/blocked", url.Values{"keyword": {"  Canon  "}})
	if !strings.Contains(body, "Canon") || strings.Contains(body, "<html") {
		t.Errorf("add partial = %q, want list without layout", body)
	}

	body = send(t, app, "POST", "/admin/blocked", url.Values{"keyword": {"CANON"}})
	if !strings.Contains(body, "already blocked") {
		t.Errorf("duplicate response = %q", body)
	}

	body = send(t, app, "POST", "/admin/blocked", url.Values{"keyword": {"   "}})
	if !strings.Contains(body, "Keyword is required") {
		t.Errorf("empty response = %q", body)
	}

	body = send(t, app, "POST", "/admin/blocked/import", url.Values{"keywords": {"Sky\nTree, canon"}})
	if !strings.Contains(body, "Imported 2 keywords (1 duplicates skipped)") {
		t.Errorf("import response = %q", body)
	}

	send(t, app, "DELETE", "/admin/blocked/"+store.blocked[0].ID.String(), nil)
	if len(store.blocked) != 2 {
		t.Errorf("blocked = %d after delete, want 2", len(store.blocked))
	}

	body = send(t, app, "POST", "/admin/blocked/clear", nil)
	if !strings.Contains(body, "No keywords are blocked") {
		t.Errorf("clear response = %q", body)
	}
}

func TestAdminStoredValuesOutliveRequest(t *testing.T) {
	store := &memoryStore{}
	app := newAdminApp(store, fakePreviewer{})

	send(t, app, "POST", "/admin/blocked", url.Values{"keyword": {"Canon"}})
	send(t, app, "POST", "/admin/blocked", url.Values{"keyword": {"Nikon"}})
	send(t, app, "POST", "/admin/substitutions", url.Values{"original": {"nyc"}, "replacement": {"New York"}})
	send(t, app, "POST", "/admin/substitutions", url.Values{"original": {"la"}, "replacement": {"Los Angeles"}})

	if len(store.blocked) != 2 {
		t.Fatalf("blocked = %d, want 2", len(store.blocked))
	}
	if got := store.blocked[0].Keyword; got != "Canon" {
		t.Errorf("first blocked keyword = %q, want %q", got, "Canon")
	}
	if len(store.subs) != 2 {
		t.Fatalf("substitutions = %d, want 2", len(store.subs))
	}
	first := store.subs[0]
	if first.OriginalKeyword != "nyc" || first.ReplacementKeyword != "New York" {
		t.Errorf("first substitution = %q => %q, want nyc => New York", first.OriginalKeyword, first.ReplacementKeyword)
	}
}

func TestAdminSubstitutionPartials(t *testing.T) {
	store := &memoryStore{}
	app := newAdminApp(store, fakePreviewer{})

	body := send(t, app, "POST", "/admin/substitutions", url.Values{"original": {"NYC"}, "replacement": {"New York"}})
	if !strings.Contains(body, "Added") || !strings.Contains(body, "New York") {
		t.Errorf("add response = %q", body)
	}

	body = send(t, app, "POST", "/admin/substitutions", url.Values{"original": {"nyc"}, "replacement": {"NY"}})
	if !strings.Contains(body, "Updated") {
		t.Errorf("upsert response = %q", body)
	}

	body = send(t, app, "POST", "/admin/substitutions/import", url.Values{"substitutions": {"LA => Los Angeles\nnonsense"}})
	if !strings.Contains(body, "Imported 1 substitutions (0 updated)") {
		t.Errorf("import response = %q", body)
	}

	body = send(t, app, "POST", "/admin/substitutions/import", url.Values{"substitutions": {"nonsense"}})
	if !strings.Contains(body, "No substitutions to import") {
		t.Errorf("bad import response = %q", body)
	}

	send(t, app, "PUT", "/admin/substitutions/"+store.subs[1].ID.String(), url.Values{"original": {"L.A."}, "replacement": {"Los Angeles"}})
	if store.subs[1].OriginalKeyword != "L.A." {
		t.Errorf("update did not apply: %+v", store.subs[1])
	}

	send(t, app, "DELETE", "/admin/substitutions/"+store.subs[0].ID.String(), nil)
	if len(store.subs) != 1 {
		t.Errorf("subs = %d after delete, want 1", len(store.subs))
	}

	body = send(t, app, "POST", "/admin/substitutions/clear", nil)
	if !strings.Contains(body, "No substitutions defined") {
		t.Errorf("clear response = %q", body)
	}
}

func TestAdminPreview(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		err     error
		wantSub string
	}{
		{"renders decisions", uuid.NewString(), nil, "/uploads/beach.jpg"},
		{"invalid id", "abc", nil, "Enter a valid article id"},
		{"no image", uuid.NewString(), tagging.ErrNoImage, "has no image"},
		{"no keywords", uuid.NewString(), tagging.ErrNoKeywords, "no IPTC keywords"},
		{"unknown article", uuid.NewString(), db.ErrArticleNotFound, "Article not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAdminApp(&memoryStore{}, fakePreviewer{err: tt.err})
			body := send(t, app, "GET", "/admin/preview?article_id="+tt.query, nil)
			if !strings.Contains(body, tt.wantSub) {
				t.Errorf("preview = %q, want it to contain %q", body, tt.wantSub)
			}
		})
	}
}
