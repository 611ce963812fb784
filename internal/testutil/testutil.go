// Package testutil 提供测试用的内存数据库。
// 线上模型带 MySQL 专有的列类型（enum/json），不能直接 AutoMigrate 到 sqlite，
// 这里用等价的便携 DDL 建表，列名与模型的 gorm 映射保持一致。
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		id varchar(36) PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime,
		name varchar(100) NOT NULL,
		email varchar(100) NOT NULL UNIQUE,
		password varchar(100) NOT NULL,
		avatar varchar(255),
		tier varchar(10) NOT NULL DEFAULT 'free',
		stripe_customer_id varchar(64),
		stripe_subscription_id varchar(64)
	)`,
	`CREATE TABLE problems (
		id varchar(36) PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime,
		slug varchar(100) NOT NULL UNIQUE,
		title varchar(200) NOT NULL,
		difficulty varchar(10),
		category varchar(50),
		pattern varchar(50),
		is_premium integer NOT NULL DEFAULT 0,
		"order" integer NOT NULL UNIQUE,
		description text,
		constraints text,
		examples text,
		starter_code text,
		solution text,
		test_cases text,
		hints text
	)`,
	`CREATE TABLE progress (
		id varchar(36) PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime,
		user_id varchar(36) NOT NULL,
		problem_id varchar(36) NOT NULL,
		status varchar(20) NOT NULL,
		attempts integer NOT NULL DEFAULT 1,
		last_code text,
		language varchar(20),
		solved_at datetime,
		UNIQUE (user_id, problem_id)
	)`,
	`CREATE TABLE webhook_events (
		id varchar(36) PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime,
		event_id varchar(64) NOT NULL UNIQUE,
		kind varchar(64),
		outcome varchar(16),
		payload text
	)`,
}

// NewDB 打开一个隔离的内存库并建好全部表。
// DSN 按测试名区分，gorm 连接池内共享同一个库，测试之间互不可见。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
