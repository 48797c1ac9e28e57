package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageBackendLocation(t *testing.T) {
	loc, err := NewStorageBackendLocation("s3://key:secret@bucket/prefix?region=eu-west-1")
	require.NoError(t, err)
	assert.True(t, loc.IsS3())
	assert.Equal(t, "bucket", loc.Host)
	assert.Equal(t, "/prefix", loc.Path)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))
	assert.Equal(t, "key:secret", loc.Auth)

	loc, err = NewStorageBackendLocation("vault://vault.local:8200/secret/notes?tls=yes")
	require.NoError(t, err)
	assert.True(t, loc.IsVault())
	assert.True(t, loc.GetParamBool("tls"))

	loc, err = NewStorageBackendLocation("file:///var/lib/myprivatenote")
	require.NoError(t, err)
	assert.True(t, loc.IsFile())

	_, err = NewStorageBackendLocation("ipfs://localhost:5001")
	require.ErrorIs(t, err, ErrInvalidLocationURI)
}

func TestNewRecordKey(t *testing.T) {
	key, err := NewRecordKey("stats.json")
	require.NoError(t, err)
	assert.Equal(t, "stats.json", key.String())

	for _, bad := range []string{"", "/abs", "../escape", "a//b", "a/../b"} {
		_, err := NewRecordKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNoteID_Short(t *testing.T) {
	assert.Equal(t, "abcd…", NoteID("abcdefghij").Short())
	assert.Equal(t, "ab", NoteID("ab").Short())
}
