package service

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/testutil"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newStatsFixture(t *testing.T) (*StatsService, *ProgressService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	problemRepo := repository.NewProblemRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	return NewStatsService(problemRepo, progressRepo), NewProgressService(progressRepo, problemRepo), db
}

func TestStatsAggregation(t *testing.T) {
	stats, progress, db := newStatsFixture(t)

	// 3 easy（数组×2、字符串×1），2 hard（均为图/dfs）
	seedProblem(t, db, "e1", 1, model.DifficultyEasy, model.CategoryArray, "hash-map", false)
	seedProblem(t, db, "e2", 2, model.DifficultyEasy, model.CategoryArray, "two-pointers", false)
	seedProblem(t, db, "e3", 3, model.DifficultyEasy, model.CategoryString, "sliding-window", false)
	seedProblem(t, db, "h1", 4, model.DifficultyHard, model.CategoryGraph, "dfs", true)
	seedProblem(t, db, "h2", 5, model.DifficultyHard, model.CategoryGraph, "dfs", true)

	for _, slug := range []string{"e1", "e2"} {
		if _, err := progress.Record("user-1", slug, model.StatusSolved, "", "go"); err != nil {
			t.Fatalf("solve %s: %v", slug, err)
		}
	}
	if _, err := progress.Record("user-1", "h1", model.StatusAttempted, "", "go"); err != nil {
		t.Fatalf("attempt h1: %v", err)
	}

	got, err := stats.Stats("user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if got.Total != 5 || got.Solved != 2 || got.Attempted != 1 {
		t.Fatalf("totals wrong: %+v", got)
	}
	if got.SolvedPercent != 40 {
		t.Fatalf("expected 40%% solved, got %v", got.SolvedPercent)
	}

	easy := got.ByDifficulty[string(model.DifficultyEasy)]
	if easy.Solved != 2 || easy.Total != 3 {
		t.Fatalf("easy partition wrong: %+v", easy)
	}
	hard := got.ByDifficulty[string(model.DifficultyHard)]
	if hard.Solved != 0 || hard.Total != 2 {
		t.Fatalf("hard partition wrong: %+v", hard)
	}
	// 没有题目的难度档位也要出现，占比为 0
	medium, ok := got.ByDifficulty[string(model.DifficultyMedium)]
	if !ok {
		t.Fatalf("medium bucket must be present even when empty")
	}
	if medium.Total != 0 || medium.Percent() != 0 {
		t.Fatalf("empty medium bucket wrong: %+v", medium)
	}

	arr := got.ByCategory[model.CategoryArray]
	if arr.Solved != 2 || arr.Total != 2 {
		t.Fatalf("array category wrong: %+v", arr)
	}
	dfs := got.ByPattern["dfs"]
	if dfs.Solved != 0 || dfs.Total != 2 {
		t.Fatalf("dfs pattern wrong: %+v", dfs)
	}
	// attempted 不计入 solved
	if _, ok := got.ByCategory[model.CategoryGraph]; !ok {
		t.Fatalf("graph bucket missing")
	}
}

func TestStatsEmptyUser(t *testing.T) {
	stats, _, db := newStatsFixture(t)
	seedProblem(t, db, "e1", 1, model.DifficultyEasy, model.CategoryArray, "hash-map", false)

	got, err := stats.Stats("user-untouched")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.Solved != 0 || got.Attempted != 0 || got.Total != 1 {
		t.Fatalf("expected untouched stats, got %+v", got)
	}
	if got.SolvedPercent != 0 {
		t.Fatalf("expected 0%%, got %v", got.SolvedPercent)
	}
}

func TestStatsNoProblems(t *testing.T) {
	stats, _, _ := newStatsFixture(t)

	got, err := stats.Stats("user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// 空题库不能除零
	if got.SolvedPercent != 0 {
		t.Fatalf("expected 0%% on empty catalog, got %v", got.SolvedPercent)
	}
}

func TestRecentActivity(t *testing.T) {
	stats, progress, db := newStatsFixture(t)

	for i := 1; i <= 12; i++ {
		seedProblem(t, db, slugN(i), i, model.DifficultyEasy, model.CategoryArray, "hash-map", false)
	}
	for i := 1; i <= 12; i++ {
		if _, err := progress.Record("user-1", slugN(i), model.StatusAttempted, "", "go"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	activities, err := stats.RecentActivity("user-1")
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(activities) != RecentActivityLimit {
		t.Fatalf("expected %d activities, got %d", RecentActivityLimit, len(activities))
	}
	// 按更新时间倒序，最近提交的排最前
	if activities[0].Slug != slugN(12) {
		t.Fatalf("expected most recent first, got %s", activities[0].Slug)
	}
	if activities[0].Title == "" || activities[0].Difficulty == "" {
		t.Fatalf("activity must join problem metadata: %+v", activities[0])
	}
}

func TestRecentActivitySkipsMissingProblem(t *testing.T) {
	stats, _, db := newStatsFixture(t)
	problem := seedProblem(t, db, "e1", 1, model.DifficultyEasy, model.CategoryArray, "hash-map", false)

	if err := db.Create(&model.Progress{
		UserID: "user-1", ProblemID: problem.ID, Status: model.StatusSolved, Attempts: 1,
	}).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	// 指向已不存在题目的脏记录
	if err := db.Create(&model.Progress{
		UserID: "user-1", ProblemID: "ghost", Status: model.StatusSolved, Attempts: 1,
	}).Error; err != nil {
		t.Fatalf("seed orphan progress: %v", err)
	}

	activities, err := stats.RecentActivity("user-1")
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected orphan record skipped, got %d entries", len(activities))
	}
	if activities[0].Slug != "e1" {
		t.Fatalf("unexpected activity: %+v", activities[0])
	}
}

func slugN(i int) string {
	return fmt.Sprintf("problem-%02d", i)
}
