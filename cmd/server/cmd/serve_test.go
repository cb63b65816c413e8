package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/chronoflow/internal/config"
	"github.com/sakif/chronoflow/internal/repository"
)

// schemaStore records EnsureSchema calls. Every other Store method panics
// through the nil embedded interface, so the test also proves nothing else
// touches the store while the server is being built.
type schemaStore struct {
	repository.Store
	ensured int
	err     error
}

func (s *schemaStore) EnsureSchema(context.Context) error {
	s.ensured++
	return s.err
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPrepareServer_EnsuresSchema(t *testing.T) {
	store := &schemaStore{}
	cfg := config.Config{Store: config.StoreConfig{Driver: config.DriverMongo}}

	srv, err := prepareServer(context.Background(), cfg, store, discardLogger())

	require.NoError(t, err)
	assert.NotNil(t, srv)
	assert.Equal(t, 1, store.ensured)
}

func TestPrepareServer_SchemaFailure(t *testing.T) {
	store := &schemaStore{err: errors.New("not authorized to create index")}
	cfg := config.Config{Store: config.StoreConfig{Driver: config.DriverMongo}}

	srv, err := prepareServer(context.Background(), cfg, store, discardLogger())

	require.Error(t, err)
	assert.Nil(t, srv)
	assert.Contains(t, err.Error(), "ensuring mongo schema")
	assert.Contains(t, err.Error(), "not authorized")
}
