package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tempo/internal/core"
)

const (
	createClientSQL    = `INSERT INTO clients (name, email, address, default_rate_cents, created_at) VALUES (?, ?, ?, ?, ?)`
	updateClientSQL    = `UPDATE clients SET name = ?, email = ?, address = ?, default_rate_cents = ? WHERE id = ?`
	deleteClientSQL    = `DELETE FROM clients WHERE id = ?`
	getClientSQL       = `SELECT id, name, email, address, default_rate_cents FROM clients WHERE id = ?`
	getClientByNameSQL = `SELECT id, name, email, address, default_rate_cents FROM clients WHERE lower(name) = lower(?)`
	listClientsSQL     = `SELECT id, name, email, address, default_rate_cents FROM clients ORDER BY lower(name)`
)

func scanClient(row interface{ Scan(...any) error }) (core.Client, error) {
	var c core.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.DefaultRate.Cents)
	return c, err
}

func (r *Repository) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	res, err := r.db.ExecContext(ctx, createClientSQL, c.Name, c.Email, c.Address, c.DefaultRate.Cents, nowUnix())
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateClient(ctx context.Context, c core.Client) error {
	res, err := r.db.ExecContext(ctx, updateClientSQL, c.Name, c.Email, c.Address, c.DefaultRate.Cents, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteClientSQL, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetClient(ctx context.Context, id int64) (core.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, getClientSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// GetClientByName looks a client up case-insensitively, for CSV import
// reconciliation.
func (r *Repository) GetClientByName(ctx context.Context, name string) (core.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, getClientByNameSQL, name))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client by name: %w", err)
	}
	return c, nil
}

func (r *Repository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx, listClientsSQL)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// ClientMap returns all clients keyed by id, for aggregation lookups.
func (r *Repository) ClientMap(ctx context.Context) (map[int64]core.Client, error) {
	clients, err := r.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]core.Client, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return m, nil
}
