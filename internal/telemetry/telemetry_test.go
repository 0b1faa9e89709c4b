package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerCreatesRotatedFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(dir, false)
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "bopchat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestInitLoggerDebugLevel(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(dir, true)
	require.NoError(t, err)
	logger.Debug("verbose")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "bopchat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"verbose"`)
}

func TestInitCacheDBCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	db, err := InitCacheDB(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("INSERT INTO chats (id, created_at) VALUES ('1', CURRENT_TIMESTAMP)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO messages (id, chat_id, sender, content, timestamp) VALUES ('m1', '1', 'user', 'hi', CURRENT_TIMESTAMP)")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM messages WHERE chat_id = '1'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInitCacheDBIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	db, err := InitCacheDB(path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO chats (id, created_at) VALUES ('1', CURRENT_TIMESTAMP)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening keeps the existing rows.
	db, err = InitCacheDB(path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&count))
	assert.Equal(t, 1, count)
}
