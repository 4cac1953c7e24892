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
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
)

func strPtr(s string) *string { return &s }

func int32Ptr(v int32) *int32 { return &v }

// fakeRows replays fixed tuples through pgx.Rows.
type fakeRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

var _ pgx.Rows = (*fakeRows)(nil)

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.data[r.pos-1], dest)
}

func scanInto(row, dest []any) error {
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(row), len(dest))
	}

	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()

		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}

		target.Set(reflect.ValueOf(v))
	}

	return nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	return scanInto(r.values, dest)
}

type fakeDB struct {
	rows     *fakeRows
	queryErr error
	byID     map[int64][]any
	lastSQL  string
	lastArgs []any
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = args

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args

	values, ok := f.byID[args[0].(int64)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}

	return fakeRow{values: values}
}

var (
	coreRow = []any{int64(1), "core-1", strPtr("10.0.0.1"), strPtr("admin"), strPtr("secret"), int32Ptr(2222), strPtr("nxos"), true}
	edgeRow = []any{int64(2), "edge-2", nil, nil, nil, nil, nil, true}
)

func TestCNPGActiveDevices(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]any{coreRow, edgeRow}}}

	p, err := NewCNPG(db, "inventory.routers", logger.NewTestLogger())
	require.NoError(t, err)

	devices, err := p.ActiveDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, models.Device{
		ID:         1,
		Hostname:   "core-1",
		IPAddress:  "10.0.0.1",
		Username:   "admin",
		Credential: "secret",
		AdminPort:  2222,
		Dialect:    models.DialectNXOS,
		IsActive:   true,
	}, devices[0])

	assert.Equal(t, models.Device{ID: 2, Hostname: "edge-2", IsActive: true}, devices[1])

	assert.Contains(t, db.lastSQL, `FROM "inventory"."routers" WHERE is_active`)
	assert.True(t, db.rows.closed)
}

func TestCNPGActiveDevicesErrors(t *testing.T) {
	errBoom := errors.New("connection reset")

	t.Run("query", func(t *testing.T) {
		p, err := NewCNPG(&fakeDB{queryErr: errBoom}, "", nil)
		require.NoError(t, err)

		_, err = p.ActiveDevices(context.Background())
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("iteration", func(t *testing.T) {
		db := &fakeDB{rows: &fakeRows{data: [][]any{coreRow}, err: errBoom}}

		p, err := NewCNPG(db, "", nil)
		require.NoError(t, err)

		_, err = p.ActiveDevices(context.Background())
		require.ErrorIs(t, err, errBoom)
		assert.True(t, db.rows.closed)
	})

	t.Run("scan", func(t *testing.T) {
		db := &fakeDB{rows: &fakeRows{data: [][]any{{int64(1)}}}}

		p, err := NewCNPG(db, "", nil)
		require.NoError(t, err)

		_, err = p.ActiveDevices(context.Background())
		require.Error(t, err)
	})
}

func TestCNPGDevice(t *testing.T) {
	db := &fakeDB{byID: map[int64][]any{1: coreRow}}

	p, err := NewCNPG(db, "", nil)
	require.NoError(t, err)

	d, err := p.Device(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "core-1", d.Hostname)
	assert.Equal(t, 2222, d.AdminPort)
	assert.Equal(t, []any{int64(1)}, db.lastArgs)
	assert.Contains(t, db.lastSQL, `FROM "devices" WHERE id = $1`)

	_, err = p.Device(context.Background(), 99)
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestTableIdentifier(t *testing.T) {
	tests := []struct {
		table   string
		want    string
		wantErr bool
	}{
		{table: "", want: `"devices"`},
		{table: "routers", want: `"routers"`},
		{table: "net.routers", want: `"net"."routers"`},
		{table: `evil"; DROP TABLE x; --`, want: `"evil""; DROP TABLE x; --"`},
		{table: "a.b.c", wantErr: true},
		{table: "net.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := tableIdentifier(tt.table)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidTable)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatic(t *testing.T) {
	devices := []models.Device{
		{ID: 1, Hostname: "a", IsActive: true},
		{ID: 2, Hostname: "b", IsActive: false},
		{ID: 3, Hostname: "c", IsActive: true},
	}

	s := NewStatic(devices)
	devices[0].Hostname = "mutated"

	active, err := s.ActiveDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].Hostname)
	assert.Equal(t, int64(3), active[1].ID)

	d, err := s.Device(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "b", d.Hostname)

	_, err = s.Device(context.Background(), 4)
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestNewSelectsSource(t *testing.T) {
	p, closeFn, err := New(context.Background(), &models.InventoryConfig{Source: models.InventorySourceStatic}, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, &Static{}, p)
	closeFn()

	_, _, err = New(context.Background(), &models.InventoryConfig{Source: "ldap"}, nil)
	require.ErrorIs(t, err, errUnknownSource)

	_, _, err = New(context.Background(), &models.InventoryConfig{Source: models.InventorySourceCNPG}, nil)
	require.ErrorIs(t, err, errNoDatabase)
}

func TestBuildCNPGConnURL(t *testing.T) {
	u := buildCNPGConnURL(&models.CNPGDatabase{
		Host:               "cnpg-rw",
		Database:           "inventory",
		Username:           "reader",
		Password:           "p@ss",
		ExtraRuntimeParams: map[string]string{"search_path": "net", "": "ignored"},
	})

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "cnpg-rw:5432", u.Host)
	assert.Equal(t, "/inventory", u.Path)
	assert.Equal(t, "reader", u.User.Username())

	pw, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss", pw)

	q := u.Query()
	assert.Equal(t, "disable", q.Get("sslmode"))
	assert.Equal(t, "routerwatch", q.Get("application_name"))
	assert.Equal(t, "net", q.Get("search_path"))
	assert.False(t, q.Has(""))
}

func TestApplyPoolSettings(t *testing.T) {
	poolConfig, err := pgxpool.ParseConfig("postgres://cnpg-rw:5432/inventory?sslmode=disable")
	require.NoError(t, err)

	applyPoolSettings(poolConfig, &models.CNPGDatabase{
		MaxConnections:   8,
		MinConnections:   1,
		MaxConnLifetime:  models.Duration(time.Hour),
		StatementTimeout: models.Duration(1500 * time.Millisecond),
	})

	assert.Equal(t, int32(8), poolConfig.MaxConns)
	assert.Equal(t, int32(1), poolConfig.MinConns)
	assert.Equal(t, time.Hour, poolConfig.MaxConnLifetime)
	assert.Equal(t, "1500", poolConfig.ConnConfig.RuntimeParams["statement_timeout"])
}
