// Package rpcjson serves a line-delimited JSON-RPC 2.0 ops socket for the CLI.
package rpcjson

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/goccy/go-json"
)

const (
	codeParse          = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeBadRequest     = 40000
	codeUnauthorized   = 40100
	codeNotFound       = 40400
	codeInternal       = 50000
)

type Server struct {
	service *application.InventoryService
	path    string

	mu       sync.Mutex
	listener net.Listener
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func New(path string, service *application.InventoryService) *Server {
	return &Server{service: service, path: path}
}

// Listen binds the unix socket, replacing a stale one left by a previous run.
func (s *Server) Listen() error {
	if strings.TrimSpace(s.path) == "" {
		return errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	_ = os.Remove(s.path)
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(s.path)
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	logging.Info().Str("socket", s.path).Msg("ops socket listening")
	return nil
}

// Serve accepts connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("rpc server is not listening")
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	_ = os.Remove(s.path)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: codeParse, Message: "parse error"}})
			return
		}

		reqCtx := logging.ContextWithRequestID(ctx, logging.NewRequestID())
		start := time.Now()
		resp := s.dispatch(reqCtx, req)
		event := logging.Ctx(reqCtx).Debug()
		if resp.Error != nil {
			event = logging.Ctx(reqCtx).Warn().Int("code", resp.Error.Code)
		}
		event.Str("method", req.Method).Dur("duration", time.Since(start)).Msg("rpc call")

		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return errorResponse(req.ID, codeInvalidRequest, "invalid request")
	}

	if req.Method == "auth.login" {
		var p application.LoginInput
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		res, err := s.service.Login(ctx, p)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"token": res.AccessToken, "user_id": res.User.UserID, "username": res.User.Username})
	}

	identity, resp, ok := s.authz(ctx, req)
	if !ok {
		return resp
	}

	switch req.Method {
	case "auth.whoami":
		return result(req.ID, map[string]any{"user_id": identity.User.UserID, "username": identity.User.Username, "role_id": identity.User.RoleID})
	case "equipment.list":
		var p struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Brand string `json:"brand"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ListEquipment(ctx, domain.EquipmentFilter{Name: p.Name, Type: p.Type, Brand: p.Brand})
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "items.list":
		var p struct {
			SerialNumber string `json:"serial_number"`
			Status       string `json:"status"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ListItems(ctx, domain.ItemFilter{SerialNumber: p.SerialNumber, Status: p.Status})
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "items.history":
		var p struct {
			ItemID string `json:"item_id"`
		}
		if !decodeParams(req.Params, &p) || p.ItemID == "" {
			return invalidParams(req.ID)
		}
		out, err := s.service.ItemHistory(ctx, p.ItemID)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "items.change_status":
		var p struct {
			ItemID   string `json:"item_id"`
			Status   string `json:"status"`
			Other    string `json:"other"`
			ObjectID string `json:"object_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ChangeStatus(ctx, application.StatusChangeInput{
			UserID:   identity.User.UserID,
			ItemID:   p.ItemID,
			ObjectID: p.ObjectID,
			Status:   p.Status,
			Other:    p.Other,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "dashboard.summary":
		out, err := s.service.DeviceSummary(ctx)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "uploads.sweep":
		var p struct {
			StaleAfter string `json:"stale_after"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		staleAfter := 24 * time.Hour
		if p.StaleAfter != "" {
			d, err := time.ParseDuration(p.StaleAfter)
			if err != nil || d < 0 {
				return invalidParams(req.ID)
			}
			staleAfter = d
		}
		removed, err := s.service.SweepStaging(ctx, staleAfter)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"removed": removed})
	default:
		return errorResponse(req.ID, codeMethodNotFound, "method not found")
	}
}

func (s *Server) authz(ctx context.Context, req request) (domain.Identity, response, bool) {
	var p struct {
		Token string `json:"token"`
	}
	if !decodeParams(req.Params, &p) {
		return domain.Identity{}, invalidParams(req.ID), false
	}
	identity, err := s.service.Authenticate(ctx, p.Token)
	if err != nil {
		return domain.Identity{}, appError(req.ID, err), false
	}
	return identity, response{}, true
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func result(id, payload any) response {
	return response{JSONRPC: "2.0", Result: payload, ID: id}
}

func errorResponse(id any, code int, message string) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: code, Message: message}, ID: id}
}

func invalidParams(id any) response {
	return errorResponse(id, codeInvalidParams, "invalid params")
}

func appError(id any, err error) response {
	switch domain.KindOf(err) {
	case domain.ErrValidation, domain.ErrDuplicate, domain.ErrReferentialIntegrity:
		return errorResponse(id, codeBadRequest, err.Error())
	case domain.ErrUnauthorized:
		return errorResponse(id, codeUnauthorized, err.Error())
	case domain.ErrNotFound:
		return errorResponse(id, codeNotFound, err.Error())
	default:
		logging.Error().Err(err).Msg("rpc call failed")
		return errorResponse(id, codeInternal, "internal error")
	}
}
