package server

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/amietti/hubline/pkg/wire"
)

const messagesSchema = `
CREATE TABLE IF NOT EXISTS messages (
	message_id TEXT PRIMARY KEY,
	hub_id     TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(hub_id, channel_id);
`

// Store persists accepted messages in SQLite
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the message database at path. The special path
// ":memory:" keeps it in memory.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(messagesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts one message
func (st *Store) Save(msg wire.ChatMessage) error {
	query := `INSERT INTO messages (message_id, hub_id, channel_id, body) VALUES (?, ?, ?, ?)`
	if _, err := st.db.Exec(query, msg.MessageID, msg.HubID, msg.ChannelID, msg.Message); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// Recent returns up to limit messages of a channel, newest first.
func (st *Store) Recent(hubID, channelID string, limit int) ([]wire.ChatMessage, error) {
	query := `
		SELECT message_id, body FROM messages
		WHERE hub_id = ? AND channel_id = ?
		ORDER BY rowid DESC
		LIMIT ?
	`
	rows, err := st.db.Query(query, hubID, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []wire.ChatMessage
	for rows.Next() {
		msg := wire.ChatMessage{HubID: hubID, ChannelID: channelID}
		if err := rows.Scan(&msg.MessageID, &msg.Message); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return msgs, nil
}

// Close closes the underlying database
func (st *Store) Close() error {
	return st.db.Close()
}
