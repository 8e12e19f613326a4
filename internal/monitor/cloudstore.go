package monitor

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gorilla/websocket"
)

// WebsocketCloudStore pushes `{id, value}` frames to a remote cloud-variable
// server, the real-network collaborator §6 names but doesn't specify the
// wire format of.
type WebsocketCloudStore struct {
	conn *websocket.Conn
}

func NewWebsocketCloudStore(conn *websocket.Conn) *WebsocketCloudStore {
	return &WebsocketCloudStore{conn: conn}
}

type cloudFrame struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func (s *WebsocketCloudStore) Save(ctx context.Context, id string, value float64) error {
	return s.conn.WriteJSON(cloudFrame{ID: id, Value: value})
}

// SQLiteCloudStore persists cloud variables locally, for offline runs or
// embedders without a cloud backend.
type SQLiteCloudStore struct {
	db *sql.DB
}

func OpenSQLiteCloudStore(path string) (*SQLiteCloudStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cloud store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cloud_variables (id TEXT PRIMARY KEY, value REAL NOT NULL)`); err != nil {
		return nil, fmt.Errorf("init cloud store schema: %w", err)
	}
	return &SQLiteCloudStore{db: db}, nil
}

func (s *SQLiteCloudStore) Save(ctx context.Context, id string, value float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cloud_variables (id, value) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
		id, value)
	return err
}

func (s *SQLiteCloudStore) Close() error { return s.db.Close() }


