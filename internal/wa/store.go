package wa

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
	"github.com/nextlevelbuilder/zappy/internal/chat"
)

// MessageStore is the local conversation store. whatsmeow carries no message
// history of its own, so the store is fed from live message events and
// history sync and answers the gateway's list/fetch queries.
type MessageStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewMessageStore opens (or creates) the sqlite store at the given path.
func NewMessageStore(dbPath string) (*MessageStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}
	s := &MessageStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate message store: %w", err)
	}
	return s, nil
}

func (s *MessageStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			jid TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			is_group BOOLEAN NOT NULL DEFAULT 0,
			unread_count INTEGER NOT NULL DEFAULT 0,
			last_message_time TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT NOT NULL,
			chat_jid TEXT NOT NULL,
			sender TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMP NOT NULL,
			is_from_me BOOLEAN NOT NULL DEFAULT 0,
			kind TEXT NOT NULL DEFAULT 'text',
			has_media BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (id, chat_jid),
			FOREIGN KEY (chat_jid) REFERENCES chats(jid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_time ON messages(chat_jid, timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *MessageStore) Close() error { return s.db.Close() }

// UpsertChat records a conversation, keeping an existing name when the new
// one is empty.
func (s *MessageStore) UpsertChat(id, name string, lastMessage time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertChatLocked(id, name, lastMessage)
}

func (s *MessageStore) upsertChatLocked(id, name string, lastMessage time.Time) error {
	isGroup := strings.HasSuffix(id, allowlist.GroupSuffix)
	var last any
	if !lastMessage.IsZero() {
		last = lastMessage.UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO chats (jid, name, is_group, last_message_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(jid) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE chats.name END,
			last_message_time = COALESCE(MAX(excluded.last_message_time, chats.last_message_time), chats.last_message_time)`,
		id, name, isGroup, last)
	return err
}

// SaveMessage records one message, creating its conversation row as needed.
// Incoming messages bump the unread counter; outgoing ones clear it.
func (s *MessageStore) SaveMessage(m chat.Message, chatName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.upsertChatLocked(m.ChatID, chatName, m.Timestamp); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO messages (id, chat_jid, sender, body, timestamp, is_from_me, kind, has_media)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.Sender, m.Body, m.Timestamp.UTC(), m.FromMe, m.Kind, m.HasMedia)
	if err != nil {
		return err
	}
	if m.FromMe {
		_, err = s.db.Exec(`UPDATE chats SET unread_count = 0 WHERE jid = ?`, m.ChatID)
	} else {
		_, err = s.db.Exec(`UPDATE chats SET unread_count = unread_count + 1 WHERE jid = ?`, m.ChatID)
	}
	return err
}

// Chats lists known conversations, most recently active first.
func (s *MessageStore) Chats(limit int, groupsOnly bool) ([]chat.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT jid, name, is_group, unread_count, last_message_time
		FROM chats`
	if groupsOnly {
		query += ` WHERE is_group = 1`
	}
	query += ` ORDER BY last_message_time DESC NULLS LAST LIMIT ?`

	// sqlite treats a negative limit as unlimited
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Chat
	for rows.Next() {
		var c chat.Chat
		var last sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.IsGroup, &c.UnreadCount, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			c.LastMessageTime = last.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChatCount returns the number of known conversations.
func (s *MessageStore) ChatCount(groupsOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT COUNT(*) FROM chats`
	if groupsOnly {
		query += ` WHERE is_group = 1`
	}
	var n int
	err := s.db.QueryRow(query).Scan(&n)
	return n, err
}

// ChatName returns the stored display name for a conversation.
func (s *MessageStore) ChatName(chatID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	s.db.QueryRow(`SELECT name FROM chats WHERE jid = ?`, chatID).Scan(&name)
	return name
}

// Recent returns up to limit recent messages for a conversation in
// chronological order.
func (s *MessageStore) Recent(chatID string, limit int) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, sender, body, timestamp, is_from_me, kind, has_media
		FROM messages
		WHERE chat_jid = ?
		ORDER BY timestamp DESC
		LIMIT ?`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		m := chat.Message{ChatID: chatID}
		if err := rows.Scan(&m.ID, &m.Sender, &m.Body, &m.Timestamp, &m.FromMe, &m.Kind, &m.HasMedia); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteMessage removes one message row.
func (s *MessageStore) DeleteMessage(chatID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM messages WHERE chat_jid = ? AND id = ?`, chatID, messageID)
	return err
}
