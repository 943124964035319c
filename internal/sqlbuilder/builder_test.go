package sqlbuilder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-databases/internal/errors"
	"mcp-databases/internal/security"
)

func buildOne(t *testing.T, op Operation, d Dialect) Statement {
	t.Helper()
	statements, err := Build(op, d)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	return statements[0]
}

func TestBuildCreateTable_PerDialect(t *testing.T) {
	op := CreateTable{
		Spec: TableSpec{
			Name: "produtos",
			Columns: []ColumnSpec{
				{Name: "id", Type: "INT", Constraints: []string{"PRIMARY KEY", "AUTO_INCREMENT"}},
				{Name: "nome", Type: "VARCHAR(100)", Constraints: []string{"NOT NULL"}},
				{Name: "preco", Type: "DECIMAL(10,2)"},
			},
		},
		IfNotExists: true,
	}

	t.Run("mysql", func(t *testing.T) {
		st := buildOne(t, op, MySQL)
		assert.Equal(t,
			"CREATE TABLE IF NOT EXISTS `produtos` (\n  `id` INT AUTO_INCREMENT PRIMARY KEY,\n  `nome` VARCHAR(100) NOT NULL,\n  `preco` DECIMAL(10,2)\n)",
			st.SQL)
		assert.False(t, st.NeedsExistsPrecheck)
	})

	t.Run("postgres", func(t *testing.T) {
		st := buildOne(t, op, Postgres)
		assert.Equal(t,
			"CREATE TABLE IF NOT EXISTS \"produtos\" (\n  \"id\" SERIAL PRIMARY KEY,\n  \"nome\" VARCHAR(100) NOT NULL,\n  \"preco\" DECIMAL(10,2)\n)",
			st.SQL)
		assert.False(t, st.NeedsExistsPrecheck)
	})

	t.Run("mssql synthesizes if-not-exists", func(t *testing.T) {
		st := buildOne(t, op, MSSQL)
		assert.Equal(t,
			"CREATE TABLE [produtos] (\n  [id] INT IDENTITY(1,1) PRIMARY KEY,\n  [nome] VARCHAR(100) NOT NULL,\n  [preco] DECIMAL(10,2)\n)",
			st.SQL)
		assert.True(t, st.NeedsExistsPrecheck)
	})
}

func TestBuildCreateTable_PostgresBigserial(t *testing.T) {
	op := CreateTable{Spec: TableSpec{
		Name:    "events",
		Columns: []ColumnSpec{{Name: "id", Type: "BIGINT", Constraints: []string{"AUTO_INCREMENT", "PRIMARY KEY"}}},
	}}

	st := buildOne(t, op, Postgres)
	assert.Contains(t, st.SQL, `"id" BIGSERIAL PRIMARY KEY`)
}

func TestBuildCreateTable_MySQLTableOptions(t *testing.T) {
	op := CreateTable{Spec: TableSpec{
		Name:    "logs",
		Columns: []ColumnSpec{{Name: "id", Type: "INT"}},
		Options: TableOptions{Engine: "InnoDB", Charset: "utf8mb4"},
	}}

	st := buildOne(t, op, MySQL)
	assert.Contains(t, st.SQL, "ENGINE=InnoDB")
	assert.Contains(t, st.SQL, "CHARACTER SET utf8mb4")

	// other dialects ignore the options entirely
	st = buildOne(t, op, Postgres)
	assert.NotContains(t, st.SQL, "ENGINE")
}

func TestBuildCreateTable_Rejections(t *testing.T) {
	cases := []struct {
		name string
		op   CreateTable
		kind errors.Kind
	}{
		{
			"invalid table name",
			CreateTable{Spec: TableSpec{Name: "users; DROP TABLE x", Columns: []ColumnSpec{{Name: "id", Type: "INT"}}}},
			errors.KindInvalidIdentifier,
		},
		{
			"no columns",
			CreateTable{Spec: TableSpec{Name: "users"}},
			errors.KindTypeNotAllowed,
		},
		{
			"type outside whitelist",
			CreateTable{Spec: TableSpec{Name: "users", Columns: []ColumnSpec{{Name: "id", Type: "BLOB"}}}},
			errors.KindTypeNotAllowed,
		},
		{
			"type with injection",
			CreateTable{Spec: TableSpec{Name: "users", Columns: []ColumnSpec{{Name: "id", Type: "INT); DROP TABLE users; --"}}}},
			errors.KindTypeNotAllowed,
		},
		{
			"constraint outside whitelist",
			CreateTable{Spec: TableSpec{Name: "users", Columns: []ColumnSpec{{Name: "id", Type: "INT", Constraints: []string{"ON UPDATE CASCADE"}}}}},
			errors.KindTypeNotAllowed,
		},
		{
			"constraint with statement delimiter",
			CreateTable{Spec: TableSpec{Name: "users", Columns: []ColumnSpec{{Name: "id", Type: "INT", Constraints: []string{"DEFAULT 1; DROP TABLE users"}}}}},
			errors.KindDangerousPattern,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.op, MySQL)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tc.kind), "expected %s, got %v", tc.kind, err)
		})
	}
}

func TestBuildAlterTable(t *testing.T) {
	add := AlterTable{
		Table:  "users",
		Action: AddColumn,
		Column: ColumnSpec{Name: "email", Type: "VARCHAR(255)", Constraints: []string{"NOT NULL"}, After: "name"},
	}

	t.Run("mysql add with position", func(t *testing.T) {
		st := buildOne(t, add, MySQL)
		assert.Equal(t, "ALTER TABLE `users` ADD COLUMN `email` VARCHAR(255) NOT NULL AFTER `name`", st.SQL)
	})

	t.Run("postgres ignores position", func(t *testing.T) {
		st := buildOne(t, add, Postgres)
		assert.Equal(t, `ALTER TABLE "users" ADD COLUMN "email" VARCHAR(255) NOT NULL`, st.SQL)
	})

	t.Run("mssql uses bare ADD", func(t *testing.T) {
		st := buildOne(t, add, MSSQL)
		assert.Equal(t, "ALTER TABLE [users] ADD [email] VARCHAR(255) NOT NULL", st.SQL)
	})

	modify := AlterTable{Table: "users", Action: ModifyColumn, Column: ColumnSpec{Name: "email", Type: "TEXT"}}

	t.Run("modify per dialect", func(t *testing.T) {
		assert.Equal(t, "ALTER TABLE `users` MODIFY COLUMN `email` TEXT", buildOne(t, modify, MySQL).SQL)
		assert.Equal(t, `ALTER TABLE "users" ALTER COLUMN "email" TYPE TEXT`, buildOne(t, modify, Postgres).SQL)
		assert.Equal(t, "ALTER TABLE [users] ALTER COLUMN [email] TEXT", buildOne(t, modify, MSSQL).SQL)
	})

	t.Run("drop column", func(t *testing.T) {
		drop := AlterTable{Table: "users", Action: DropColumn, Column: ColumnSpec{Name: "email"}}
		assert.Equal(t, "ALTER TABLE `users` DROP COLUMN `email`", buildOne(t, drop, MySQL).SQL)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := Build(AlterTable{Table: "users", Action: "RENAME_COLUMN", Column: ColumnSpec{Name: "x"}}, MySQL)
		assert.True(t, errors.IsKind(err, errors.KindUnsupportedOperationForDialect))
	})
}

func TestBuildDropTable(t *testing.T) {
	assert.Equal(t, "DROP TABLE `old_data`", buildOne(t, DropTable{Table: "old_data"}, MySQL).SQL)
	assert.Equal(t, `DROP TABLE IF EXISTS "old_data"`, buildOne(t, DropTable{Table: "old_data", IfExists: true}, Postgres).SQL)
}

func TestBuildInsert(t *testing.T) {
	op := Insert{Table: "usuarios", Values: map[string]any{"nome": "João", "idade": 30, "email": "joao@example.com"}}

	t.Run("mysql", func(t *testing.T) {
		st := buildOne(t, op, MySQL)
		assert.Equal(t, "INSERT INTO `usuarios` (`email`, `idade`, `nome`) VALUES (?, ?, ?)", st.SQL)
		assert.Equal(t, []any{"joao@example.com", 30, "João"}, st.Args)
	})

	t.Run("postgres placeholders", func(t *testing.T) {
		st := buildOne(t, op, Postgres)
		assert.Equal(t, `INSERT INTO "usuarios" ("email", "idade", "nome") VALUES ($1, $2, $3)`, st.SQL)
	})

	t.Run("mssql placeholders", func(t *testing.T) {
		st := buildOne(t, op, MSSQL)
		assert.Equal(t, "INSERT INTO [usuarios] ([email], [idade], [nome]) VALUES (@p1, @p2, @p3)", st.SQL)
	})

	t.Run("empty values rejected", func(t *testing.T) {
		_, err := Build(Insert{Table: "usuarios", Values: map[string]any{}}, MySQL)
		assert.Error(t, err)
	})

	t.Run("bad column name rejected", func(t *testing.T) {
		_, err := Build(Insert{Table: "usuarios", Values: map[string]any{"nome; --": "x"}}, MySQL)
		assert.True(t, errors.IsKind(err, errors.KindInvalidIdentifier))
	})
}

func TestBuildInsert_ValuesNeverInSQL(t *testing.T) {
	// Whatever the values contain, the rendered SQL holds placeholders only.
	op := Insert{Table: "usuarios", Values: map[string]any{
		"nome": "'; DROP TABLE usuarios; --",
		"bio":  "Robert'); DELETE FROM students",
	}}

	st := buildOne(t, op, MySQL)
	assert.NotContains(t, st.SQL, "DROP")
	assert.NotContains(t, st.SQL, "DELETE")
	assert.NotContains(t, st.SQL, "'")
	assert.Len(t, st.Args, 2)
}

func TestBuildUpdate(t *testing.T) {
	op := Update{
		Table: "usuarios",
		Set:   map[string]any{"nome": "Maria", "idade": 31},
		Where: map[string]any{"id": 7},
	}

	st := buildOne(t, op, Postgres)
	assert.Equal(t, `UPDATE "usuarios" SET "idade" = $1, "nome" = $2 WHERE "id" = $3`, st.SQL)
	assert.Equal(t, []any{31, "Maria", 7}, st.Args)

	t.Run("empty where rejected", func(t *testing.T) {
		_, err := Build(Update{Table: "usuarios", Set: map[string]any{"a": 1}}, MySQL)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindDangerousCommand))
	})

	t.Run("empty set rejected", func(t *testing.T) {
		_, err := Build(Update{Table: "usuarios", Where: map[string]any{"id": 1}}, MySQL)
		assert.Error(t, err)
	})
}

func TestBuildDelete(t *testing.T) {
	st := buildOne(t, Delete{Table: "usuarios", Where: map[string]any{"status": "inactive", "age": 99}}, MySQL)
	assert.Equal(t, "DELETE FROM `usuarios` WHERE `age` = ? AND `status` = ?", st.SQL)
	assert.Equal(t, []any{99, "inactive"}, st.Args)

	t.Run("empty where rejected", func(t *testing.T) {
		_, err := Build(Delete{Table: "usuarios"}, MySQL)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindDangerousCommand))
	})
}

func TestBuildBulkInsert(t *testing.T) {
	records := make([]map[string]any, 0, 250)
	for i := 0; i < 250; i++ {
		records = append(records, map[string]any{"n": i, "label": fmt.Sprintf("row-%d", i)})
	}

	t.Run("batches and renumbers placeholders", func(t *testing.T) {
		statements, err := Build(BulkInsert{Table: "items", Records: records, BatchSize: 100}, Postgres)
		require.NoError(t, err)
		require.Len(t, statements, 3)

		assert.Contains(t, statements[0].SQL, `INSERT INTO "items" ("label", "n") VALUES ($1, $2)`)
		assert.Contains(t, statements[0].SQL, "($199, $200)")
		assert.Len(t, statements[0].Args, 200)

		// last batch carries the remaining 50 records and restarts numbering
		assert.Contains(t, statements[2].SQL, "($1, $2)")
		assert.Contains(t, statements[2].SQL, "($99, $100)")
		assert.Len(t, statements[2].Args, 100)
	})

	t.Run("default batch size", func(t *testing.T) {
		statements, err := Build(BulkInsert{Table: "items", Records: records}, MySQL)
		require.NoError(t, err)
		assert.Len(t, statements, 3)
	})

	t.Run("ceiling enforced before batching", func(t *testing.T) {
		tooMany := make([]map[string]any, MaxBulkRecords+1)
		for i := range tooMany {
			tooMany[i] = map[string]any{"n": i}
		}
		_, err := Build(BulkInsert{Table: "items", Records: tooMany}, MySQL)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindRecordCountExceeded))
	})

	t.Run("shape mismatch rejected", func(t *testing.T) {
		_, err := Build(BulkInsert{Table: "items", Records: []map[string]any{
			{"a": 1, "b": 2},
			{"a": 3},
		}}, MySQL)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindInconsistentRecordShape))
	})

	t.Run("different key same count rejected", func(t *testing.T) {
		_, err := Build(BulkInsert{Table: "items", Records: []map[string]any{
			{"a": 1, "b": 2},
			{"a": 3, "c": 4},
		}}, MySQL)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindInconsistentRecordShape))
	})

	t.Run("no records rejected", func(t *testing.T) {
		_, err := Build(BulkInsert{Table: "items"}, MySQL)
		assert.Error(t, err)
	})
}

func TestBuildCount(t *testing.T) {
	st, err := BuildCount("usuarios", map[string]any{"status": "inactive"}, MySQL)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM `usuarios` WHERE `status` = ?", st.SQL)
	assert.Equal(t, []any{"inactive"}, st.Args)
}

// Every statement the builder emits must itself pass the read-path
// classifier as a recognized command; none may look like free-form text.
func TestBuiltStatementsClassifyCleanly(t *testing.T) {
	cfg := security.NewConfig()

	st := buildOne(t, Insert{Table: "t", Values: map[string]any{"a": 1}}, MySQL)
	cls := cfg.Classify(st.SQL)
	assert.Equal(t, "INSERT", cls.FirstCommand)

	count, err := BuildCount("t", map[string]any{"a": 1}, MySQL)
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateQuery(count.SQL), "pre-flight count must pass the read-only gate")
}
