package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridoystarlord/schemaplan/database"
	"github.com/ridoystarlord/schemaplan/schema"
)

// Postgres executes DDL against a PostgreSQL database through a pgx pool.
// The pool serializes nothing itself; pgxpool hands each Exec its own
// connection, so Postgres is safe for the parallel executor.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects using DATABASE_URL (via the shared pool).
func NewPostgres() (*Postgres, error) {
	pool, err := database.GetPool()
	if err != nil {
		return nil, fmt.Errorf("get database pool: %v", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateTable(ctx context.Context, ref schema.TableRef) error {
	stmt, err := CreateTableSQL(ref)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %v", ref.TableName(), err)
	}
	return nil
}

func (p *Postgres) DropTable(ctx context.Context, ref schema.TableRef) error {
	if _, err := p.pool.Exec(ctx, DropTableSQL(ref)); err != nil {
		return fmt.Errorf("drop table %s: %v", ref.TableName(), err)
	}
	return nil
}
