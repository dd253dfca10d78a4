package auth

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mail-admin/internal/cache"
)

func newStoreSource(t *testing.T) (*StoreTokenSource, *cache.Store) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := cache.NewCache(cache.MemoryPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := cache.NewStore(c, logger)
	return NewStoreTokenSource(store, logger), store
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("  abc \n").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestStoreTokenSource_RoundTrip(t *testing.T) {
	src, store := newStoreSource(t)
	ctx := context.Background()

	token, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = src.Stored(ctx)
	assert.True(t, errors.Is(err, ErrNoToken))

	require.NoError(t, src.Save("secret"))
	token, err = src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	// A fresh source sees the persisted token
	fresh := NewStoreTokenSource(store, src.logger)
	token, err = fresh.Stored(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	require.NoError(t, src.Clear())
	token, err = src.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStoreTokenSource_RejectsEmpty(t *testing.T) {
	src, _ := newStoreSource(t)
	assert.Error(t, src.Save("   "))
}

type failingStore struct{}

func (failingStore) GetSetting(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) SetSetting(string, string) error         { return errors.New("disk gone") }
func (failingStore) DeleteSetting(string) error              { return errors.New("disk gone") }

func TestStoreTokenSource_StoreError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	src := NewStoreTokenSource(failingStore{}, logger)

	_, err := src.Token(context.Background())
	assert.Error(t, err)
	assert.Error(t, src.Save("x"))
	assert.Error(t, src.Clear())
}

func TestChain(t *testing.T) {
	src, _ := newStoreSource(t)
	ctx := context.Background()

	chain := Chain{StaticToken(""), src, StaticToken("fallback")}
	token, err := chain.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fallback", token)

	require.NoError(t, src.Save("stored"))
	token, err = chain.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stored", token)

	token, err = Chain{}.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
