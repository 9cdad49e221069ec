package buffer

import (
	"github.com/JyotinderSingh/dropdb/file"
	"github.com/JyotinderSingh/dropdb/log"
)

// Buffer wraps a page and tracks the disk block it is bound to, how many
// clients currently have it pinned, and, if dirty, the transaction and LSN
// responsible for the modification.
type Buffer struct {
	fileManager *file.Manager
	logManager  *log.Manager
	contents    *file.Page
	block       *file.BlockId
	pins        int
	txNum       int // -1 means the buffer is not modified
	lsn         int // -1 means no corresponding log record
}

// NewBuffer creates a buffer not yet assigned to any block.
func NewBuffer(fileManager *file.Manager, logManager *log.Manager) *Buffer {
	return &Buffer{
		fileManager: fileManager,
		logManager:  logManager,
		contents:    file.NewPage(fileManager.BlockSize()),
		txNum:       -1,
		lsn:         -1,
	}
}

// Contents returns the page managed by this buffer.
func (b *Buffer) Contents() *file.Page {
	return b.contents
}

// Block returns the block currently assigned to this buffer, or nil.
func (b *Buffer) Block() *file.BlockId {
	return b.block
}

// SetModified marks the buffer as modified by the given transaction. A
// negative lsn means the modification has no corresponding log record
// (used for unlogged operations such as page formatting).
func (b *Buffer) SetModified(txNum int, lsn int) {
	b.txNum = txNum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

func (b *Buffer) isPinned() bool {
	return b.pins > 0
}

func (b *Buffer) modifyingTxn() int {
	return b.txNum
}

// assignToBlock flushes any existing dirty contents, then reads the given
// block into this buffer's page.
func (b *Buffer) assignToBlock(block *file.BlockId) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.block = block
	if err := b.fileManager.Read(block, b.contents); err != nil {
		return err
	}
	b.pins = 0
	return nil
}

// flush writes the buffer's page to disk if it has been modified, after
// first ensuring the protecting log record is durable.
func (b *Buffer) flush() error {
	if b.txNum < 0 {
		return nil
	}
	if err := b.logManager.Flush(b.lsn); err != nil {
		return err
	}
	if err := b.fileManager.Write(b.block, b.contents); err != nil {
		return err
	}
	b.txNum = -1
	return nil
}

func (b *Buffer) pin() {
	b.pins++
}

func (b *Buffer) unpin() {
	b.pins--
}
