package store

import (
	"context"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

// Needs a local Redis. Skipped when none is reachable.
func TestRedisStoreRoundTrip(t *testing.T) {

	assert := assert.New(t)

	s, err := NewRedisStore("localhost:6379", "", 15)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	saved := domain.BiasState{
		SolarBias:      0.07,
		LoadBias:       -0.02,
		SessionBias:    0.15,
		SessionHistory: []float64{3.3, 4.4},
	}
	assert.NoError(s.Save(ctx, saved))

	loaded, err := s.Load(ctx)
	assert.NoError(err)
	assert.NotNil(loaded)
	assert.Equal(saved.SolarBias, loaded.SolarBias)
	assert.Equal(saved.SessionHistory, loaded.SessionHistory)
}

func TestRedisStoreBadParams(t *testing.T) {

	assert := assert.New(t)

	_, err := NewRedisStore("", "", 0)
	assert.Error(err)

	_, err = NewRedisStore("localhost:6379", "", -1)
	assert.Error(err)
}
