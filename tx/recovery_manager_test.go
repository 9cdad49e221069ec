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

// TestRecovery seeds two blocks with a committed baseline, overwrites them
// through a second round of transactions where one rolls back explicitly
// and the other is abandoned mid-flight (simulating a crash before its
// commit or rollback record reaches the log), and checks that recovering
// a fresh transaction restores both blocks to the committed baseline.
func TestRecovery(t *testing.T) {
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

	blk0 := file.NewBlockId("testfile", 0)
	blk1 := file.NewBlockId("testfile", 1)

	// tx1/tx2 establish the committed baseline. These writes are not
	// logged, the same way a block's first-ever contents never need an
	// undo record.
	tx1 := NewTransaction(fm, lm, bm, lt)
	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx1.Pin(blk0))
	require.NoError(t, tx2.Pin(blk1))

	pos := 0
	for i := 0; i < 6; i++ {
		require.NoError(t, tx1.SetInt(blk0, pos, pos, false))
		require.NoError(t, tx2.SetInt(blk1, pos, pos, false))
		pos += 20
	}
	require.NoError(t, tx1.SetString(blk0, 200, "abc", false))
	require.NoError(t, tx2.SetString(blk1, 200, "def", false))
	require.NoError(t, tx1.Commit())
	require.NoError(t, tx2.Commit())

	// tx3/tx4 overwrite the baseline with logging. tx3 rolls back
	// explicitly; tx4 is force-flushed to disk and then abandoned without
	// a commit or rollback record, as if the process crashed right there.
	tx3 := NewTransaction(fm, lm, bm, lt)
	tx4 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx3.Pin(blk0))
	require.NoError(t, tx4.Pin(blk1))

	pos = 0
	for i := 0; i < 6; i++ {
		require.NoError(t, tx3.SetInt(blk0, pos, pos+100, true))
		require.NoError(t, tx4.SetInt(blk1, pos, pos+100, true))
		pos += 20
	}
	require.NoError(t, tx3.SetString(blk0, 200, "uvw", true))
	require.NoError(t, tx4.SetString(blk1, 200, "xyz", true))

	require.NoError(t, bm.FlushAll(tx3.TxNum()))
	require.NoError(t, bm.FlushAll(tx4.TxNum()))
	require.NoError(t, tx3.Rollback())
	// tx4 never commits or rolls back.

	// A restart begins with an empty lock table, so tx4's locks do not
	// survive the crash. A fresh transaction recovers from the log and the
	// on-disk state left behind by the crash, then commits to release the
	// locks its undo took.
	lt = concurrency.NewLockTable()
	recoveryTx := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, recoveryTx.Recover())
	require.NoError(t, recoveryTx.Commit())

	checkTx := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, checkTx.Pin(blk0))
	require.NoError(t, checkTx.Pin(blk1))

	pos = 0
	for i := 0; i < 6; i++ {
		v0, err := checkTx.GetInt(blk0, pos)
		require.NoError(t, err)
		assert.Equal(t, pos, v0, "block 0 offset %d not restored to baseline", pos)

		v1, err := checkTx.GetInt(blk1, pos)
		require.NoError(t, err)
		assert.Equal(t, pos, v1, "block 1 offset %d not restored to baseline", pos)

		pos += 20
	}

	s0, err := checkTx.GetString(blk0, 200)
	require.NoError(t, err)
	assert.Equal(t, "abc", s0)

	s1, err := checkTx.GetString(blk1, 200)
	require.NoError(t, err)
	assert.Equal(t, "def", s1)

	require.NoError(t, checkTx.Commit())
}

// TestRecoveryCheckpointStopsUndo checks that a checkpoint record, once
// written, draws a line recovery will not cross: transactions that
// finished before the checkpoint are never revisited.
func TestRecoveryCheckpointStopsUndo(t *testing.T) {
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

	block := file.NewBlockId("testfile", 0)

	tx1 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx1.Pin(block))
	require.NoError(t, tx1.SetInt(block, 0, 1, false))
	require.NoError(t, tx1.Commit())

	// Running Recover with nothing outstanding just writes a checkpoint.
	quiescent := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, quiescent.Recover())

	tx2 := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, tx2.Pin(block))
	require.NoError(t, tx2.SetInt(block, 0, 2, true))
	require.NoError(t, bm.FlushAll(tx2.TxNum()))
	// tx2 never commits or rolls back.

	// As after a restart, recovery runs against an empty lock table and
	// commits to release the locks its undo took.
	lt = concurrency.NewLockTable()
	recoveryTx := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, recoveryTx.Recover())
	require.NoError(t, recoveryTx.Commit())

	checkTx := NewTransaction(fm, lm, bm, lt)
	require.NoError(t, checkTx.Pin(block))
	v, err := checkTx.GetInt(block, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "uncommitted write after the checkpoint must still be undone")
	require.NoError(t, checkTx.Commit())
}
