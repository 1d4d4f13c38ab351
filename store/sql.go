package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
	_ "github.com/snowflakedb/gosnowflake"
	"github.com/xo/dburl"
)

// SqlStore is a Store backed by database/sql, used for SQL Server and Snowflake.
type SqlStore struct {
	log       logger.Logger
	db        *sql.DB
	dbType    string
	bindStyle BindStyle
	schema    string
}

// newSqlServerStore opens a SQL Server database using a sqlserver:// DSN.
func newSqlServerStore(ctx context.Context, log logger.Logger, c ConnectionDetails) (*SqlStore, error) {
	dsn := c.Data[DefaultConnectionKeyNames.Dsn]
	u, err := dburl.Parse(dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %q: %w", RedactDsn(dsn), err)
	}
	log.Info("Opening database connection: ", u.Redacted())
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	return newSqlStore(ctx, log, db, constants.ConnectionTypeSqlServer, BindAtP, c.Data[DefaultConnectionKeyNames.Schema])
}

// newSnowflakeStore opens the Snowflake database in the snowflake:// DSN.
func newSnowflakeStore(ctx context.Context, log logger.Logger, c ConnectionDetails) (*SqlStore, error) {
	dsn := c.Data[DefaultConnectionKeyNames.Dsn]
	if _, err := SnowflakeParseDSN(dsn); err != nil {
		return nil, err
	}
	log.Info("Opening database connection: ", RedactDsn(dsn))
	db, err := sql.Open("snowflake", strings.TrimPrefix(dsn, snowflakeScheme))
	if err != nil {
		return nil, err
	}
	return newSqlStore(ctx, log, db, constants.ConnectionTypeSnowflake, BindQuestion, c.Data[DefaultConnectionKeyNames.Schema])
}

func newSqlStore(ctx context.Context, log logger.Logger, db *sql.DB, dbType string, style BindStyle, schema string) (*SqlStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "unable to connect to %v", dbType)
	}
	// One run uses one shared handle sequentially.
	db.SetMaxOpenConns(1)
	log.Info("Successful connection to ", dbType)
	return NewSqlStoreWithDB(log, db, dbType, style, schema), nil
}

// NewSqlStoreWithDB wraps an open database handle.
func NewSqlStoreWithDB(log logger.Logger, db *sql.DB, dbType string, style BindStyle, schema string) *SqlStore {
	return &SqlStore{log: log, db: db, dbType: dbType, bindStyle: style, schema: schema}
}

func (s *SqlStore) qualify(collection string) string {
	if s.schema == "" || strings.Contains(collection, ".") {
		return collection
	}
	return s.schema + "." + collection
}

// Probe runs a query that returns no rows but fails if the table is missing.
func (s *SqlStore) Probe(ctx context.Context, collection string) error {
	table := s.qualify(collection)
	if err := validateIdentifier(table); err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("select * from %v where 1 = 0", table))
	if err != nil {
		return errors.Wrapf(err, "probe of %v failed", table)
	}
	defer rows.Close()
	return rows.Err()
}

// Insert writes rows using one multi-row INSERT statement.
func (s *SqlStore) Insert(ctx context.Context, collection string, columns []string, rows []map[string]interface{}) error {
	stmt, args, err := BuildInsert(s.log, s.qualify(collection), columns, s.bindStyle, rows)
	if err != nil {
		return err
	}
	if _, err = s.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrapf(err, "insert of %v rows into %v failed", len(rows), collection)
	}
	return nil
}

func (s *SqlStore) GetType() string {
	return s.dbType
}

func (s *SqlStore) Close() error {
	return s.db.Close()
}
