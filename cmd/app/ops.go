package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

type loginResult struct {
	Token    string
	UserID   string
	Username string
}

type whoAmI struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	RoleID   int    `json:"role_id"`
}

// envelope is the {"data": ...} wrapper most list routes use.
type envelope[T any] struct {
	Data T `json:"data"`
}

func doLogin(ctx context.Context, cfg cliConfig, username, password string) (loginResult, error) {
	in := map[string]any{"Username": username, "Password": password}
	if cfg.Transport == "uds" {
		var out struct {
			Token    string `json:"token"`
			UserID   string `json:"user_id"`
			Username string `json:"username"`
		}
		if err := newRPCClient(cfg.Socket).call(ctx, "auth.login", in, &out); err != nil {
			return loginResult{}, err
		}
		return loginResult{Token: out.Token, UserID: out.UserID, Username: out.Username}, nil
	}
	var out struct {
		AccessToken string      `json:"accessToken"`
		User        domain.User `json:"user"`
	}
	if err := newAPIClient(cfg.Server, "").request(ctx, http.MethodPost, "/ntdtb/users", in, &out); err != nil {
		return loginResult{}, err
	}
	return loginResult{Token: out.AccessToken, UserID: out.User.UserID, Username: out.User.Username}, nil
}

func doWhoAmI(ctx context.Context, cfg cliConfig) (whoAmI, error) {
	var out whoAmI
	if cfg.Transport == "uds" {
		err := newRPCClient(cfg.Socket).call(ctx, "auth.whoami", map[string]any{"token": cfg.Token}, &out)
		return out, err
	}
	var profile domain.Profile
	if err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodGet, "/api/user/profile", nil, &profile); err != nil {
		return out, err
	}
	return whoAmI{UserID: profile.UserID, Username: profile.Username, RoleID: profile.RoleID}, nil
}

func doEquipmentList(ctx context.Context, cfg cliConfig, name, kind, brand string) ([]domain.EquipmentSummary, error) {
	if cfg.Transport == "uds" {
		var out []domain.EquipmentSummary
		err := newRPCClient(cfg.Socket).call(ctx, "equipment.list", map[string]any{
			"token": cfg.Token, "name": name, "type": kind, "brand": brand,
		}, &out)
		return out, err
	}
	q := url.Values{}
	setIf(q, "Equipe_Name", name)
	setIf(q, "Equipe_Type", kind)
	setIf(q, "Brand", brand)
	var out envelope[[]domain.EquipmentSummary]
	err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodGet, withQuery("/api/equipement", q), nil, &out)
	return out.Data, err
}

func doItemsList(ctx context.Context, cfg cliConfig, serial, status string) ([]domain.Item, error) {
	if cfg.Transport == "uds" {
		var out []domain.Item
		err := newRPCClient(cfg.Socket).call(ctx, "items.list", map[string]any{
			"token": cfg.Token, "serial_number": serial, "status": status,
		}, &out)
		return out, err
	}
	q := url.Values{}
	setIf(q, "Serial_Number", serial)
	setIf(q, "Item_Status", status)
	var out envelope[[]domain.Item]
	err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodGet, withQuery("/api/item", q), nil, &out)
	return out.Data, err
}

func doItemHistory(ctx context.Context, cfg cliConfig, itemID string) ([]domain.HistoryRecord, error) {
	if cfg.Transport == "uds" {
		var out []domain.HistoryRecord
		err := newRPCClient(cfg.Socket).call(ctx, "items.history", map[string]any{"token": cfg.Token, "item_id": itemID}, &out)
		return out, err
	}
	var out envelope[[]domain.HistoryRecord]
	err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodGet, "/api/item/history/"+url.PathEscape(itemID), nil, &out)
	return out.Data, err
}

func doChangeStatus(ctx context.Context, cfg cliConfig, itemID, status, other, objectID string) (domain.StatusChangeResult, error) {
	if cfg.Transport == "uds" {
		var out domain.StatusChangeResult
		err := newRPCClient(cfg.Socket).call(ctx, "items.change_status", map[string]any{
			"token": cfg.Token, "item_id": itemID, "status": status, "other": other, "object_id": objectID,
		}, &out)
		return out, err
	}
	var out struct {
		StatusID string `json:"statusId"`
	}
	err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodPost, "/api/changestatus", map[string]any{
		"Item_ID":             itemID,
		"Item_history_Status": status,
		"Item_history_Other":  other,
		"Object_ID":           objectID,
	}, &out)
	return domain.StatusChangeResult{Changed: out.StatusID != "", StatusID: out.StatusID}, err
}

func doSummary(ctx context.Context, cfg cliConfig) (domain.DeviceSummary, error) {
	var out domain.DeviceSummary
	if cfg.Transport == "uds" {
		err := newRPCClient(cfg.Socket).call(ctx, "dashboard.summary", map[string]any{"token": cfg.Token}, &out)
		return out, err
	}
	err := newAPIClient(cfg.Server, cfg.Token).request(ctx, http.MethodGet, "/api/device-summary", nil, &out)
	return out, err
}

func doSweep(ctx context.Context, cfg cliConfig, staleAfter string) (int, error) {
	if cfg.Transport != "uds" {
		return 0, errors.New("staging sweep is only available over the ops socket")
	}
	var out struct {
		Removed int `json:"removed"`
	}
	err := newRPCClient(cfg.Socket).call(ctx, "uploads.sweep", map[string]any{"token": cfg.Token, "stale_after": staleAfter}, &out)
	return out.Removed, err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
