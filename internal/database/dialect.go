package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect hides the differences between the supported record stores
type Dialect interface {
	// Name is the DB_TYPE value selecting this dialect
	Name() string

	// DriverName is the database/sql driver registered for the dialect
	DriverName() string

	// DSN builds the connection string
	DSN(config DialectConfig) string

	// RewriteQuery turns ? placeholders into the dialect's syntax
	RewriteQuery(query string) string

	// ConfigureConnection applies pool limits and session settings
	ConfigureConnection(db *sql.DB, pool PoolConfig) error

	// MigrationsSubdir is the directory under migrations/ holding this dialect's files
	MigrationsSubdir() string

	// CreateMigrationsTableQuery creates the table recording applied migrations
	CreateMigrationsTableQuery() string

	// IsDuplicateKey reports whether err is a primary key or unique violation
	IsDuplicateKey(err error) bool
}

// DialectConfig holds connection settings. SQLite uses Path, the servers use URL.
type DialectConfig struct {
	Path string
	URL  string
	Pool PoolConfig
}

// PoolConfig bounds the connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig is used when no explicit limits are configured
var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
	ConnMaxIdleTime: time.Minute,
}

func (p PoolConfig) withDefaults() PoolConfig {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = DefaultPoolConfig.MaxOpenConns
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = DefaultPoolConfig.MaxIdleConns
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = DefaultPoolConfig.ConnMaxLifetime
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = DefaultPoolConfig.ConnMaxIdleTime
	}
	return p
}

func (p PoolConfig) apply(db *sql.DB) {
	p = p.withDefaults()
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Question marks inside single-quoted literals are left alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	counter := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			counter++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(counter))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
