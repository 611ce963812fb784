package database

import (
	"algo_prep_backend/internal/model"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"
)

// SeedCatalog 从静态数据集载入题库。仅在题目表为空时写入：
// 题库视为不可变数据，线上不提供编辑入口，更新走数据集版本发布。
func SeedCatalog(db *gorm.DB, seedFile string) error {
	var count int64
	if err := db.Model(&model.Problem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if seedFile == "" {
		log.Println("No catalog seed file configured, skipping seed")
		return nil
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read catalog seed: %w", err)
	}

	var problems []model.Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		return fmt.Errorf("parse catalog seed: %w", err)
	}

	seen := make(map[string]bool, len(problems))
	orders := make(map[int]bool, len(problems))
	for _, p := range problems {
		if p.Slug == "" {
			return fmt.Errorf("catalog seed: problem %q missing slug", p.Title)
		}
		if seen[p.Slug] {
			return fmt.Errorf("catalog seed: duplicate slug %q", p.Slug)
		}
		if orders[p.Order] {
			return fmt.Errorf("catalog seed: duplicate order %d (slug %q)", p.Order, p.Slug)
		}
		seen[p.Slug] = true
		orders[p.Order] = true
	}

	for i := range problems {
		if err := db.Create(&problems[i]).Error; err != nil {
			return fmt.Errorf("seed problem %q: %w", problems[i].Slug, err)
		}
	}

	log.Printf("Catalog seeded with %d problems", len(problems))
	return nil
}
