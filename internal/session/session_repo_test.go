package session

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// The gorm pool and the transaction are backed by two different mock
// connections. A write escaping the transaction would land on the pool
// mock, which expects nothing.
func TestRepository_WithTxRunsWritesOnTransaction(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	txMock.ExpectExec(`UPDATE "attendance_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectCommit()

	tx, err := txDB.Begin()
	assert.NoError(t, err)

	row := &Session{
		ID:            uuid.New(),
		ParticipantID: uuid.New(),
		SiteID:        uuid.New(),
		ProgramID:     uuid.New(),
		State:         StateClockedIn,
		ClockInAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	repo := NewRepository(gdb).WithTx(tx)
	assert.NoError(t, repo.Update(context.Background(), row))
	assert.NoError(t, tx.Commit())

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestRepository_WithoutTxUsesPool(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	poolMock.ExpectExec(`UPDATE "attendance_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))

	row := &Session{
		ID:            uuid.New(),
		ParticipantID: uuid.New(),
		SiteID:        uuid.New(),
		ProgramID:     uuid.New(),
		State:         StateClockedIn,
		ClockInAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	assert.NoError(t, NewRepository(gdb).Update(context.Background(), row))
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
