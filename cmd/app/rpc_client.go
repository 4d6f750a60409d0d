package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

const (
	rpcDialTimeout = 5 * time.Second
	// rpcUnauthorized mirrors the ops socket's code for a missing or stale token.
	rpcUnauthorized = 40100
)

// rpcClient speaks newline-delimited JSON-RPC 2.0 to the ops socket, one
// connection per call.
type rpcClient struct {
	socket string
	seq    atomic.Int64
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	ID int64 `json:"id"`
}

func newRPCClient(socket string) *rpcClient {
	return &rpcClient{socket: socket}
}

func (c *rpcClient) call(ctx context.Context, method string, params any, out any) error {
	dialer := net.Dialer{Timeout: rpcDialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socket)
	if err != nil {
		return fmt.Errorf("dial ops socket %s: %w", c.socket, err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	id := c.seq.Add(1)
	line, err := json.Marshal(rpcEnvelope{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return err
	}

	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read %s reply: %w", method, err)
	}
	var resp rpcEnvelope
	if err := json.Unmarshal(reply, &resp); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	if resp.ID != id {
		return fmt.Errorf("%s: reply id %d does not match request %d", method, resp.ID, id)
	}
	if resp.Error != nil {
		return &remoteError{Transport: "rpc", Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}
