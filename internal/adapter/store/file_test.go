package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestFileStoreFirstRun(t *testing.T) {

	assert := assert.New(t)

	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	assert.NoError(err)

	state, err := s.Load(context.Background())
	assert.NoError(err)
	assert.Nil(state)
}

func TestFileStoreRoundTrip(t *testing.T) {

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	assert.NoError(err)

	raw := 4.2
	saved := domain.BiasState{
		SolarBias:         -0.12,
		LoadBias:          0.05,
		SessionBias:       0.3,
		LastRawSessionKWh: &raw,
		LastSessionKWh:    5.1,
		SessionHistory:    []float64{5.1},
		SolarErrors:       []float64{-0.2, -0.1},
		LoadErrors:        []float64{0.1},
	}
	assert.NoError(s.Save(context.Background(), saved))

	loaded, err := s.Load(context.Background())
	assert.NoError(err)
	assert.NotNil(loaded)
	assert.Equal(saved, *loaded)
}

func TestFileStoreOverwrite(t *testing.T) {

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	assert.NoError(err)

	assert.NoError(s.Save(context.Background(), domain.BiasState{SolarBias: 0.1}))
	assert.NoError(s.Save(context.Background(), domain.BiasState{SolarBias: 0.2}))

	loaded, err := s.Load(context.Background())
	assert.NoError(err)
	assert.InDelta(0.2, loaded.SolarBias, 1e-9)
}

func TestFileStoreCorruptFile(t *testing.T) {

	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	assert.NoError(err)

	assert.NoError(os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = s.Load(context.Background())
	assert.Error(err)
}
