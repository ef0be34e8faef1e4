package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

//go:embed migration.sql
var migrationSQL string

// DB wraps the SQLite database holding chat exchanges and risk alerts
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{
		conn: conn,
		path: dbPath,
	}

	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Migrate runs database migrations
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying database connection for advanced operations
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// SaveExchange stores one user/assistant round trip
func (db *DB) SaveExchange(ex *models.Exchange) (int64, error) {
	result, err := db.conn.Exec(`
		INSERT INTO exchanges (session_id, message, reply, model, emotion, risk_prob)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ex.SessionID, ex.Message, ex.Reply, ex.Model, ex.Emotion, ex.RiskProb)
	if err != nil {
		return 0, fmt.Errorf("failed to save exchange: %w", err)
	}
	return result.LastInsertId()
}

// SaveAlert records a high-risk message for follow-up
func (db *DB) SaveAlert(sessionID, message string, riskProb float64) error {
	_, err := db.conn.Exec(`
		INSERT INTO alerts (session_id, message, risk_prob)
		VALUES (?, ?, ?)
	`, sessionID, message, riskProb)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// History returns the stored turns for a session, oldest first. limit bounds
// the number of exchanges (each contributing a user and an assistant turn).
func (db *DB) History(sessionID string, limit int) ([]models.Turn, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(`
		SELECT message, reply FROM (
			SELECT id, message, reply FROM exchanges
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var message, reply string
		if err := rows.Scan(&message, &reply); err != nil {
			continue
		}
		turns = append(turns, models.Turn{Role: models.RoleUser, Content: message})
		turns = append(turns, models.Turn{Role: models.RoleAssistant, Content: reply})
	}
	return turns, rows.Err()
}

var _ interfaces.ChatStore = (*DB)(nil)
