package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-forum/atlas/internal/config"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/atlas-forum/atlas/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrSlugConflict = domain.ErrSlugConflict

const uniqueViolation = "23505"

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := Connect(ctx, cfg.Private.Pg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Log.Info("successfully connected to db")
	return &Storage{db}, nil
}

// NewWithDB wraps an already opened handle, migrations are not run.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db}
}

func Connect(ctx context.Context, cfg config.Pg) (*sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname, sslMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

type gooseLogger struct{}

func (g *gooseLogger) Printf(format string, args ...any) {
	logger.Log.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (g *gooseLogger) Fatalf(format string, args ...any) {
	// goose returns the error as well, so no exit here
	logger.Log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

func nullMember(id *domain.MemberId) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// args collects positional parameters for queries with optional predicates.
type args []interface{}

func (a *args) add(v interface{}) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// siteScope joins a post alias to its forum and category so the caller can filter by site.
func siteScope(post string) string {
	return fmt.Sprintf(`JOIN forums f ON f.id = %s.forum_id
        JOIN categories c ON c.id = f.category_id`, post)
}
