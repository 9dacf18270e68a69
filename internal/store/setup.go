package store

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"go.uber.org/zap"
)

// Stores bundles the stores selected by the configuration.
type Stores struct {
	Contacts ContactStore
	Images   ImageStore
	closers  []func() error
}

// Setup opens the configured database, applies pending migrations and creates the contact and
// image stores.
func Setup(ctx context.Context, cfg config.Config, log *zap.Logger) (*Stores, error) {
	stores := &Stores{}
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Warn("using the in-memory store, contacts are lost on shutdown")
		m := NewMemoryStore()
		stores.Contacts = m
		stores.Images = m
	default:
		db, err := Open(cfg)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, db.Close)
		if err := Migrate(ctx, db, log); err != nil {
			stores.Close()
			return nil, err
		}
		s, err := NewSQLStore(db)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.closers = append(stores.closers, s.Close)
		stores.Contacts = s
		stores.Images = s
		log.Info("database ready", zap.String("driver", cfg.DBDriver))
	}

	if cfg.ImageBackend == config.ImageBackendS3 {
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.Images = NewS3ImageStore(client, cfg.S3Bucket, cfg.S3Prefix)
		log.Info("storing profile images in S3", zap.String("bucket", cfg.S3Bucket))
	}
	return stores, nil
}

// Close releases the stores in reverse order of creation.
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "could not close store")
		}
	}
	s.closers = nil
	return firstErr
}
