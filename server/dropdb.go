// Package server wires together the file, log, buffer, locking, and
// catalog layers into a single embeddable database instance. It is the
// top-level entry point a client program uses to open a database
// directory and start transactions against it; everything above the
// transaction (SQL parsing, planning, query execution) is out of scope
// for this engine.
package server

import (
	"fmt"

	"github.com/JyotinderSingh/dropdb/buffer"
	"github.com/JyotinderSingh/dropdb/file"
	"github.com/JyotinderSingh/dropdb/log"
	"github.com/JyotinderSingh/dropdb/metadata"
	"github.com/JyotinderSingh/dropdb/tx"
	"github.com/JyotinderSingh/dropdb/tx/concurrency"
)

const (
	blockSize  = 400
	bufferSize = 8
	logFile    = "dropdb.log"
)

// DropDB owns the shared subsystems of a single database directory: the
// file manager, log manager, buffer pool, lock table, and catalog. Callers
// obtain independent transactions from it via NewTx.
type DropDB struct {
	fileManager     *file.Manager
	bufferManager   *buffer.Manager
	logManager      *log.Manager
	metadataManager *metadata.Manager
	lockTable       *concurrency.LockTable
}

// NewDropDBWithOptions is a constructor that is mostly useful for debugging
// and tests, since it allows overriding the default block and buffer pool
// sizes. It does not run recovery or initialize the catalog.
func NewDropDBWithOptions(dirName string, blockSize, bufferSize int) (*DropDB, error) {
	db := &DropDB{}
	var err error

	if db.fileManager, err = file.NewManager(dirName, blockSize); err != nil {
		return nil, err
	}
	if db.logManager, err = log.NewManager(db.fileManager, logFile); err != nil {
		return nil, err
	}
	db.bufferManager = buffer.NewManager(db.fileManager, db.logManager, bufferSize)
	db.lockTable = concurrency.NewLockTable()

	return db, nil
}

// NewDropDB opens (or creates) a database directory, running crash
// recovery and bootstrapping the catalog as needed. Use this constructor
// for anything other than tests.
func NewDropDB(dirName string) (*DropDB, error) {
	db, err := NewDropDBWithOptions(dirName, blockSize, bufferSize)
	if err != nil {
		return nil, err
	}

	transaction := db.NewTx()
	isNew := db.fileManager.IsNew()

	if isNew {
		fmt.Printf("creating new database\n")
	} else {
		fmt.Printf("recovering existing database\n")
		if err := transaction.Recover(); err != nil {
			return nil, err
		}
	}

	if db.metadataManager = metadata.NewManager(isNew, transaction); db.metadataManager == nil {
		return nil, fmt.Errorf("failed to initialize metadata manager")
	}

	if err := transaction.Commit(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewTx starts a new transaction against this database.
func (db *DropDB) NewTx() *tx.Transaction {
	return tx.NewTransaction(db.fileManager, db.logManager, db.bufferManager, db.lockTable)
}

// MetadataManager returns the catalog manager shared by every transaction.
func (db *DropDB) MetadataManager() *metadata.Manager {
	return db.metadataManager
}

// FileManager returns the shared file manager.
func (db *DropDB) FileManager() *file.Manager {
	return db.fileManager
}

// LogManager returns the shared log manager.
func (db *DropDB) LogManager() *log.Manager {
	return db.logManager
}

// BufferManager returns the shared buffer pool.
func (db *DropDB) BufferManager() *buffer.Manager {
	return db.bufferManager
}
