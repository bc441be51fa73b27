package campus

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory reads campuses from Postgres.
type PostgresDirectory struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresDirectory returns a directory over schema ("" means the default schema).
func NewPostgresDirectory(pool *pgxpool.Pool, schema string) (*PostgresDirectory, error) {
	if pool == nil {
		return nil, fmt.Errorf("campus: nil pool")
	}
	if schema == "" {
		schema = dbschema.DefaultSchema
	}
	if !dbschema.ValidIdent(schema) {
		return nil, fmt.Errorf("campus: invalid schema identifier")
	}
	return &PostgresDirectory{pool: pool, schema: schema}, nil
}

func (d *PostgresDirectory) table() string { return dbschema.Ident(d.schema, "campuses") }

func (d *PostgresDirectory) List(ctx context.Context) ([]Campus, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, address, service_times FROM `+d.table()+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Campus
	for rows.Next() {
		var c Campus
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.ServiceTimes); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *PostgresDirectory) Get(ctx context.Context, id string) (Campus, error) {
	var c Campus
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, address, service_times FROM `+d.table()+` WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Address, &c.ServiceTimes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campus{}, ErrNotFound
	}
	if err != nil {
		return Campus{}, err
	}
	return c, nil
}

func (d *PostgresDirectory) Upsert(ctx context.Context, cs ...Campus) error {
	batch := &pgx.Batch{}
	for _, c := range cs {
		c = clean(c)
		if c.ID == "" || c.Name == "" {
			return errors.New("campus: id and name are required")
		}
		batch.Queue(
			`INSERT INTO `+d.table()+` (id, name, address, service_times)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE
			   SET name = EXCLUDED.name,
			       address = EXCLUDED.address,
			       service_times = EXCLUDED.service_times`,
			c.ID, c.Name, c.Address, c.ServiceTimes,
		)
	}
	return d.pool.SendBatch(ctx, batch).Close()
}
