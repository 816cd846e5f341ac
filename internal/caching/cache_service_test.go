package caching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	tenant := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	product := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, "storeops:product:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222", ProductKey(tenant, product))
	assert.Equal(t, "storeops:dashboard:11111111-1111-1111-1111-111111111111", DashboardKey(tenant))
	assert.Equal(t, "storeops:refresh:abc", Key("refresh", "abc"))
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://:secret@cache:6380/2", "", 0)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "cache:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
	assert.Equal(t, "secret", client.Options().Password)

	plain, err := NewRedisClient("localhost:6379", "pw", 1)
	require.NoError(t, err)
	defer plain.Close()
	assert.Equal(t, "localhost:6379", plain.Options().Addr)
	assert.Equal(t, 1, plain.Options().DB)

	_, err = NewRedisClient("redis://cache:6379/notanumber", "", 0)
	assert.Error(t, err)
}
