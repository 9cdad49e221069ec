package tx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JyotinderSingh/dropdb/buffer"
	"github.com/JyotinderSingh/dropdb/file"
	"github.com/JyotinderSingh/dropdb/log"
	"github.com/JyotinderSingh/dropdb/tx/concurrency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransactionCommitRollback runs a chain of four transactions against
// the same block, checking that committed writes are visible to later
// transactions and that a rolled-back write never is.
func TestTransactionCommitRollback(t *testing.T) {
	testDir := filepath.Join("testdir", t.Name())
	defer func() {
		require.NoError(t, os.RemoveAll(testDir))
	}()

	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "testlog")
	require.NoError(t, err)
	bm := buffer.NewManager(fm, lm, 8)
	lt := concurrency.NewLockTable()

	block := file.NewBlockId("testfile", 1)

	// T1 seeds the block directly, without logging -- there is nothing
	// yet for recovery to undo.
	tx1 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 80, 1, false))
	require.NoError(t, tx1.SetString(block, 40, "one", false))
	require.NoError(t, tx1.Commit())

	// T2 reads T1's committed values, then overwrites them with logging.
	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx2.Pin(block))
	iVal, err := tx2.GetInt(block, 80)
	require.NoError(t, err)
	assert.Equal(t, 1, iVal)
	sVal, err := tx2.GetString(block, 40)
	require.NoError(t, err)
	assert.Equal(t, "one", sVal)

	require.NoError(t, tx2.SetInt(block, 80, 2, true))
	require.NoError(t, tx2.SetString(block, 40, "one!", true))
	require.NoError(t, tx2.Commit())

	// T3 reads T2's committed values, writes a new value, then rolls back.
	tx3 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx3.Pin(block))
	iVal, err = tx3.GetInt(block, 80)
	require.NoError(t, err)
	assert.Equal(t, 2, iVal)
	sVal, err = tx3.GetString(block, 40)
	require.NoError(t, err)
	assert.Equal(t, "one!", sVal)

	require.NoError(t, tx3.SetInt(block, 80, 9999, true))
	require.NoError(t, tx3.Rollback())

	// T4 must see T2's value, not T3's abandoned write.
	tx4 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx4.Pin(block))
	iVal, err = tx4.GetInt(block, 80)
	require.NoError(t, err)
	assert.Equal(t, 2, iVal, "rolled-back write must not be visible")
	require.NoError(t, tx4.Commit())
}

// TestTransactionAppendAndSize checks that Append grows a file by one
// block and that Size reflects the growth once the appending transaction
// commits.
func TestTransactionAppendAndSize(t *testing.T) {
	testDir := filepath.Join("testdir", t.Name())
	defer func() {
		require.NoError(t, os.RemoveAll(testDir))
	}()

	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "testlog")
	require.NoError(t, err)
	bm := buffer.NewManager(fm, lm, 8)
	lt := concurrency.NewLockTable()

	tx := NewTransaction(fm, lm, bm, lt)
	before, err := tx.Size("appendtest")
	require.NoError(t, err)

	block, err := tx.Append("appendtest")
	require.NoError(t, err)
	assert.Equal(t, before, block.Number())

	after, err := tx.Size("appendtest")
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	require.NoError(t, tx.Commit())
}
