package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gowa-bridge/database"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

const dbFile = "session.db"

type Options struct {
	// Dialect is database.DialectSQLite or database.DialectPostgres.
	Dialect string
	// Dir holds the sqlite database. Ignored for postgres.
	Dir string
	// DSN is the postgres connection string. Ignored for sqlite.
	DSN string
	// DeviceName is shown in the phone's linked devices list.
	DeviceName string
}

// Store owns the on-disk authentication artifacts of the single session.
type Store struct {
	opts Options
	log  zerolog.Logger

	mu        sync.Mutex
	db        *sql.DB
	container *sqlstore.Container
}

func NewStore(opts Options, log zerolog.Logger) *Store {
	if opts.Dialect == "" {
		opts.Dialect = database.DialectSQLite
	}
	return &Store{opts: opts, log: log}
}

// Dir is the storage location for sqlite stores.
func (s *Store) Dir() string {
	return s.opts.Dir
}

// Device returns the stored device, or a fresh one when no session exists yet.
func (s *Store) Device(ctx context.Context) (*store.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(ctx); err != nil {
		return nil, err
	}

	if s.opts.DeviceName != "" {
		store.DeviceProps.Os = proto.String(s.opts.DeviceName)
	}

	device, err := s.container.GetFirstDevice(ctx)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get device: %w", err)
	}
	if device == nil {
		device = s.container.NewDevice()
		s.log.Info().Msg("No stored session, created new device")
	}
	return device, nil
}

func (s *Store) openLocked(ctx context.Context) error {
	if s.container != nil {
		return nil
	}

	dsn := s.opts.DSN
	if s.opts.Dialect == database.DialectSQLite {
		if err := os.MkdirAll(s.opts.Dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
		dsn = database.SQLiteDSN(filepath.Join(s.opts.Dir, dbFile))
	}

	db, container, err := database.OpenWhatsmeow(ctx, s.opts.Dialect, dsn,
		waLog.Zerolog(s.log.With().Str("module", "sqlstore").Logger()))
	if err != nil {
		return err
	}
	s.db, s.container = db, container
	return nil
}

// Clear destroys every persisted artifact. It is a no-op when nothing is stored.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Dialect == database.DialectPostgres {
		return s.deleteDevicesLocked(ctx)
	}

	s.closeLocked()
	if err := os.RemoveAll(s.opts.Dir); err != nil {
		return fmt.Errorf("remove session dir: %w", err)
	}
	s.log.Info().Str("dir", s.opts.Dir).Msg("Session artifacts removed")
	return nil
}

func (s *Store) deleteDevicesLocked(ctx context.Context) error {
	if err := s.openLocked(ctx); err != nil {
		return err
	}

	devices, err := s.container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	for _, device := range devices {
		if err := s.container.DeleteDevice(ctx, device); err != nil {
			return fmt.Errorf("delete device: %w", err)
		}
	}
	s.log.Info().Int("devices", len(devices)).Msg("Session devices deleted")
	return nil
}

func (s *Store) closeLocked() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close session database")
	}
	s.db, s.container = nil, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}
