package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAddBlockedKeyword(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	b, err := db.AddBlockedKeyword(ctx, "Canon")
	if err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("AddBlockedKeyword() did not set ID")
	}

	got, err := db.GetBlockedKeywordByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBlockedKeywordByID() error = %v", err)
	}
	if got.Keyword != "Canon" {
		t.Errorf("GetBlockedKeywordByID() keyword = %q, want %q", got.Keyword, "Canon")
	}
}

func TestAddBlockedKeyword_CaseInsensitiveDuplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := db.AddBlockedKeyword(ctx, "Canon"); err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}
	_, err := db.AddBlockedKeyword(ctx, "CANON")
	if !errors.Is(err, ErrDuplicateBlocked) {
		t.Errorf("AddBlockedKeyword() duplicate error = %v, want %v", err, ErrDuplicateBlocked)
	}
}

func TestDeleteBlockedKeyword(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	b, err := db.AddBlockedKeyword(ctx, "Sony")
	if err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}
	if err := db.DeleteBlockedKeyword(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBlockedKeyword() error = %v", err)
	}
	if err := db.DeleteBlockedKeyword(ctx, b.ID); !errors.Is(err, ErrBlockedKeywordNotFound) {
		t.Errorf("DeleteBlockedKeyword() second error = %v, want %v", err, ErrBlockedKeywordNotFound)
	}

	if _, err := db.AddBlockedKeyword(ctx, "Fuji"); err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}
	if err := db.DeleteBlockedKeywordByName(ctx, "Fuji"); err != nil {
		t.Errorf("DeleteBlockedKeywordByName() error = %v", err)
	}
	if err := db.DeleteBlockedKeywordByName(ctx, "Fuji"); !errors.Is(err, ErrBlockedKeywordNotFound) {
		t.Errorf("DeleteBlockedKeywordByName() second error = %v, want %v", err, ErrBlockedKeywordNotFound)
	}
}

func TestImportBlockedKeywords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := db.AddBlockedKeyword(ctx, "Sky"); err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}

	result, err := db.ImportBlockedKeywords(ctx, []string{"sky", "Tree", "Cloud", "tree"})
	if err != nil {
		t.Fatalf("ImportBlockedKeywords() error = %v", err)
	}
	if result.Imported != 2 || result.Duplicates != 2 {
		t.Errorf("ImportBlockedKeywords() = %+v, want 2 imported, 2 duplicates", result)
	}

	if err := db.ClearBlockedKeywords(ctx); err != nil {
		t.Fatalf("ClearBlockedKeywords() error = %v", err)
	}
	blocked, err := db.ListBlockedKeywords(ctx)
	if err != nil {
		t.Fatalf("ListBlockedKeywords() error = %v", err)
	}
	if len(blocked) != 0 {
		t.Errorf("ListBlockedKeywords() after clear = %d entries, want 0", len(blocked))
	}
}
