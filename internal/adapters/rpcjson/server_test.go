package rpcjson

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/adapters/blob"
	"github.com/atvirokodosprendimai/assettrack/internal/adapters/db/sqlstore"
	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (string, *application.InventoryService) {
	t.Helper()
	// unix socket paths are length limited, keep it short
	dir, err := os.MkdirTemp("", "ops")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := sqlstore.Open(sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: filepath.Join(dir, "ops.db")})
	require.NoError(t, err)
	require.NoError(t, sqlstore.RunMigrations(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	svc := application.NewInventoryService(sqlstore.NewRepository(db), blob.NewMemory(),
		application.WithStagingDir(filepath.Join(dir, "staging")))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "admin", "secret"))

	socket := filepath.Join(dir, "ops.sock")
	srv := New(socket, svc)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = srv.Close()
	})
	return socket, svc
}

type client struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, socket string) *client {
	t.Helper()
	conn, err := net.DialTimeout("unix", socket, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) call(t *testing.T, method string, params any) response {
	t.Helper()
	require.NoError(t, json.NewEncoder(c.conn).Encode(map[string]any{
		"jsonrpc": "2.0", "method": method, "params": params, "id": 1,
	}))
	line, err := c.r.ReadBytes('\n')
	require.NoError(t, err)
	var resp response
	require.NoError(t, json.Unmarshal(line, &resp))
	return resp
}

func TestLoginThenAuthorizedCalls(t *testing.T) {
	socket, _ := startServer(t)
	c := dial(t, socket)

	resp := c.call(t, "auth.login", map[string]string{"Username": "admin", "Password": "secret"})
	require.Nil(t, resp.Error)
	token := resp.Result.(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	resp = c.call(t, "auth.whoami", map[string]string{"token": token})
	require.Nil(t, resp.Error)
	assert.Equal(t, "admin", resp.Result.(map[string]any)["username"])

	resp = c.call(t, "dashboard.summary", map[string]string{"token": token})
	require.Nil(t, resp.Error)
	assert.EqualValues(t, 0, resp.Result.(map[string]any)["totalCount"])

	resp = c.call(t, "items.history", map[string]string{"token": token, "item_id": "I99999999"})
	require.Nil(t, resp.Error)
}

func TestRejectsMissingTokenAndUnknownMethod(t *testing.T) {
	socket, _ := startServer(t)
	c := dial(t, socket)

	resp := c.call(t, "equipment.list", map[string]string{"token": "nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = c.call(t, "auth.login", map[string]string{"Username": "admin", "Password": "secret"})
	token := resp.Result.(map[string]any)["token"].(string)

	resp = c.call(t, "graph.trace", map[string]string{"token": token})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)

	resp = c.call(t, "items.change_status", map[string]string{"token": token, "item_id": "I00000404", "status": "broken"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeNotFound, resp.Error.Code)
}
