package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

// PostgresStore is a Store that writes directly to Postgres using pgx.
type PostgresStore struct {
	log    logger.Logger
	pool   *pgxpool.Pool
	schema string
}

func newPostgresStore(ctx context.Context, log logger.Logger, c ConnectionDetails) (*PostgresStore, error) {
	dsn := c.Data[DefaultConnectionKeyNames.Dsn]
	log.Info("Opening database connection: ", RedactDsn(dsn))
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid postgres DSN")
	}
	cfg.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "unable to connect to postgres")
	}
	log.Info("Successful connection to postgres")
	return &PostgresStore{log: log, pool: pool, schema: c.Data[DefaultConnectionKeyNames.Schema]}, nil
}

func (p *PostgresStore) qualify(collection string) string {
	if p.schema == "" || strings.Contains(collection, ".") {
		return collection
	}
	return p.schema + "." + collection
}

func (p *PostgresStore) Probe(ctx context.Context, collection string) error {
	table := p.qualify(collection)
	if err := validateIdentifier(table); err != nil {
		return err
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf("select * from %v limit 0", table))
	if err != nil {
		return describePgError(err)
	}
	rows.Close()
	return describePgError(rows.Err())
}

func (p *PostgresStore) Insert(ctx context.Context, collection string, columns []string, rows []map[string]interface{}) error {
	stmt, args, err := BuildInsert(p.log, p.qualify(collection), columns, BindDollar, rows)
	if err != nil {
		return err
	}
	if _, err = p.pool.Exec(ctx, stmt, args...); err != nil {
		return describePgError(err)
	}
	return nil
}

func (p *PostgresStore) GetType() string {
	return constants.ConnectionTypePostgres
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// describePgError adds the server's detail and hint to the error text when there is one.
func describePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := fmt.Sprintf("%v (SQLSTATE %v)", pgErr.Message, pgErr.Code)
		if pgErr.Detail != "" {
			msg += ": " + pgErr.Detail
		}
		if pgErr.Hint != "" {
			msg += "; hint: " + pgErr.Hint
		}
		return errors.New(msg)
	}
	return err
}
