package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_schema.sql
var createSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP FUNCTION IF EXISTS random_question_sample(integer);
				DROP TABLE IF EXISTS user_question_answers;
				DROP TABLE IF EXISTS question_notebooks;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS users;
			`)
			return err
		},
	)
}
