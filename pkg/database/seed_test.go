package database

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/testutil"
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problems.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

const validSeed = `[
	{"slug": "two-sum", "title": "Two Sum", "difficulty": "easy", "category": "array", "pattern": "hash-map", "order": 1},
	{"slug": "three-sum", "title": "3Sum", "difficulty": "medium", "category": "array", "pattern": "two-pointers", "order": 2, "isPremium": true}
]`

func TestSeedCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	path := writeSeedFile(t, validSeed)

	if err := SeedCatalog(db, path); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var count int64
	if err := db.Model(&model.Problem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 problems, got %d", count)
	}

	var premium model.Problem
	if err := db.Where("slug = ?", "three-sum").First(&premium).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if !premium.IsPremium || premium.Order != 2 {
		t.Fatalf("seed fields lost: %+v", premium)
	}

	// 表非空时重复播种是 no-op
	if err := SeedCatalog(db, path); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if err := db.Model(&model.Problem{}).Count(&count).Error; err != nil {
		t.Fatalf("recount: %v", err)
	}
	if count != 2 {
		t.Fatalf("reseed duplicated rows: %d", count)
	}
}

func TestSeedCatalogRejectsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)

	dupSlug := writeSeedFile(t, `[
		{"slug": "two-sum", "title": "A", "order": 1},
		{"slug": "two-sum", "title": "B", "order": 2}
	]`)
	if err := SeedCatalog(db, dupSlug); err == nil {
		t.Fatalf("expected error for duplicate slug")
	}

	dupOrder := writeSeedFile(t, `[
		{"slug": "a", "title": "A", "order": 1},
		{"slug": "b", "title": "B", "order": 1}
	]`)
	if err := SeedCatalog(db, dupOrder); err == nil {
		t.Fatalf("expected error for duplicate order")
	}
}

func TestSeedCatalogNoFileConfigured(t *testing.T) {
	db := testutil.NewDB(t)
	if err := SeedCatalog(db, ""); err != nil {
		t.Fatalf("empty seed file should be a no-op, got %v", err)
	}
}
