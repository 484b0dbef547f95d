package repository

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the storage layer reacts to.
const (
	errDupEntry         = 1062
	errLockWaitTimeout  = 1205
	errLockDeadlock     = 1213
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
)

// Unique key names from the migrations.
const (
	keyActiveSeat    = "uq_bookings_active_seat"
	keyBookingNumber = "uq_bookings_number"
	keySeatPosition  = "uq_seats_position"
)

func mysqlError(err error) (*mysql.MySQLError, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsTransient reports whether err is a storage fault worth retrying: lock
// wait timeouts, deadlocks and broken connections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if me, ok := mysqlError(err); ok {
		return me.Number == errLockWaitTimeout || me.Number == errLockDeadlock
	}
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}

// isDuplicateKey reports whether err is a duplicate entry on the named key.
// MySQL 8 reports the key as "table.key", older servers as "key"; both
// contain the bare name.
func isDuplicateKey(err error, key string) bool {
	me, ok := mysqlError(err)
	return ok && me.Number == errDupEntry && strings.Contains(me.Message, key)
}

func isForeignKeyViolation(err error) bool {
	me, ok := mysqlError(err)
	if !ok {
		return false
	}
	return me.Number == errRowIsReferenced || me.Number == errRowIsReferenced2
}

// isMissingParent reports an insert or update naming a parent row that does
// not exist.
func isMissingParent(err error) bool {
	me, ok := mysqlError(err)
	return ok && me.Number == errNoReferencedRow
}
