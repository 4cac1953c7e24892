/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
)

var errInvalidTable = errors.New("cnpg: invalid device table name")

const deviceColumns = `id, hostname, ip_address, username, credential, admin_port, dialect, is_active`

// querier is the subset of *pgxpool.Pool used by CNPG.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CNPG reads devices from a PostgreSQL table. It never writes.
type CNPG struct {
	db          querier
	activeQuery string
	deviceQuery string
	logger      logger.Logger
}

var _ Provider = (*CNPG)(nil)

// NewCNPG prepares queries against table, which may be schema-qualified.
func NewCNPG(db querier, table string, log logger.Logger) (*CNPG, error) {
	ident, err := tableIdentifier(table)
	if err != nil {
		return nil, err
	}

	return &CNPG{
		db: db,
		activeQuery: fmt.Sprintf(`SELECT %s FROM %s WHERE is_active ORDER BY id`,
			deviceColumns, ident),
		deviceQuery: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, deviceColumns, ident),
		logger:      logger.Component(log, "inventory"),
	}, nil
}

func tableIdentifier(table string) (string, error) {
	if table == "" {
		table = models.DefaultDeviceTable
	}

	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", errInvalidTable, table)
	}

	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: %q", errInvalidTable, table)
		}
	}

	return pgx.Identifier(parts).Sanitize(), nil
}

func (c *CNPG) ActiveDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := c.db.Query(ctx, c.activeQuery)
	if err != nil {
		return nil, fmt.Errorf("cnpg: query active devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device

	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("cnpg: scan device: %w", err)
		}

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cnpg: iterate devices: %w", err)
	}

	c.logger.Debug().Int("devices", len(devices)).Msg("Loaded active devices")

	return devices, nil
}

func (c *CNPG) Device(ctx context.Context, id int64) (*models.Device, error) {
	d, err := scanDevice(c.db.QueryRow(ctx, c.deviceQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("cnpg: load device %d: %w", id, err)
	}

	return &d, nil
}

func scanDevice(row pgx.Row) (models.Device, error) {
	var (
		d          models.Device
		ip         *string
		username   *string
		credential *string
		adminPort  *int32
		dialect    *string
	)

	if err := row.Scan(&d.ID, &d.Hostname, &ip, &username, &credential, &adminPort, &dialect, &d.IsActive); err != nil {
		return models.Device{}, err
	}

	d.IPAddress = deref(ip)
	d.Username = deref(username)
	d.Credential = deref(credential)
	d.Dialect = models.CommandDialect(deref(dialect))

	if adminPort != nil {
		d.AdminPort = int(*adminPort)
	}

	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
