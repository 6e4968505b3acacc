package postgres

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TableNames holds environment-prefixed table names. The prefix keeps
// dev/test/prod data apart inside a single database.
type TableNames struct {
	Users         string
	Tasks         string
	Categories    string
	SubCategories string
	Annotations   string
	Groups        string
	Attachments   string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:         fmt.Sprintf("%susers", prefix),
		Tasks:         fmt.Sprintf("%stasks", prefix),
		Categories:    fmt.Sprintf("%scategories", prefix),
		SubCategories: fmt.Sprintf("%ssub_categories", prefix),
		Annotations:   fmt.Sprintf("%sannotations", prefix),
		Groups:        fmt.Sprintf("%sgroups", prefix),
		Attachments:   fmt.Sprintf("%sattachments", prefix),
	}
}

// All returns every table name, in drop-safe order (dependents first).
func (t *TableNames) All() []string {
	return []string{
		t.Attachments,
		t.Annotations,
		t.Groups,
		t.Tasks,
		t.SubCategories,
		t.Categories,
		t.Users,
	}
}

// RepositoryConfig holds shared configuration for repository implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}
