package corpus

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/auroraclub/memberqa/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore archives fetched messages and can serve as the corpus
// source when no upstream API is configured.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(config DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	store := &PostgresStore{db: db}

	// Initialize database schema
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

// SaveMessages upserts the message set by upstream id. Existing rows
// keep their insertion order so snapshots stay stable across refreshes.
func (s *PostgresStore) SaveMessages(ctx context.Context, messages []models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO member_messages (id, author, body, ts, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET author = EXCLUDED.author,
		    body = EXCLUDED.body,
		    ts = EXCLUDED.ts,
		    fetched_at = EXCLUDED.fetched_at`

	now := time.Now()
	for _, msg := range messages {
		if _, err := tx.ExecContext(ctx, query, msg.ID, msg.Author, msg.Text, msg.Timestamp, now); err != nil {
			return fmt.Errorf("error saving message %s: %v", msg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing messages: %v", err)
	}
	return nil
}

// FetchAll loads the archived corpus in insertion order, so the store
// can stand in as a Fetcher behind a CachedProvider.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]models.Message, error) {
	query := `
		SELECT id, author, body, ts
		FROM member_messages
		ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.Author, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %v", err)
	}

	return messages, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
