package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"depositledger/storage"
)

type kvFixture struct {
	Name  string
	Count uint64
}

func TestKVRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	ok, err := manager.KVGet([]byte("missing"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	value := kvFixture{Name: "alice", Count: 7}
	require.NoError(t, manager.KVPut([]byte("fixture/alice"), value))

	var out kvFixture
	ok, err = manager.KVGet([]byte("fixture/alice"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value, out)
}

func TestKVRejectsEmptyKey(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	require.Error(t, manager.KVPut(nil, kvFixture{}))
	_, err := manager.KVGet(nil, nil)
	require.Error(t, err)
}

func TestKVKeysDoNotCollide(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	require.NoError(t, manager.KVPut([]byte("a/b"), kvFixture{Name: "one"}))
	require.NoError(t, manager.KVPut([]byte("a/c"), kvFixture{Name: "two"}))

	var out kvFixture
	ok, err := manager.KVGet([]byte("a/b"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", out.Name)
}
