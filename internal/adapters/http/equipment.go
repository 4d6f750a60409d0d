package http

import (
	"net/http"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/go-chi/chi/v5"
)

var itemSuggestFields = map[domain.SuggestField]bool{
	domain.SuggestSerialNumber: true,
	domain.SuggestNodeName:     true,
	domain.SuggestRoomName:     true,
	domain.SuggestObjectName:   true,
}

func (h *Handler) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.service.ListEquipment(r.Context(), domain.EquipmentFilter{
		EquipeID:    q.Get("Equipe_ID"),
		Name:        q.Get("Equipe_Name"),
		Type:        q.Get("Equipe_Type"),
		ModelNumber: q.Get("Model_Number"),
		Brand:       q.Get("Brand"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(rows))
}

func (h *Handler) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetEquipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req application.EquipmentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.service.CreateEquipment(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Equipment created successfully", "Equipe_ID": id})
}

func (h *Handler) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	var req application.EquipmentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateEquipment(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Equipment updated successfully"))
}

func (h *Handler) handleDeleteEquipment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEquipment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Equipment deleted successfully"))
}

func (h *Handler) handleItemsByEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItemsByEquipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleAvailableEquipment(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListAvailableEquipment(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})
}

func (h *Handler) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.service.SearchItems(r.Context(), domain.ItemSearch{
		SerialNumber: q.Get("Serial_Number"),
		NodeName:     q.Get("Node_Name"),
		RoomName:     q.Get("Room_Name"),
		ObjectName:   q.Get("Object_Name"),
		Status:       q.Get("Item_Status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(rows))
}

func (h *Handler) handleItemSuggestions(w http.ResponseWriter, r *http.Request) {
	h.writeSuggestions(w, r, itemSuggestFields)
}

// writeSuggestions answers a typeahead query. A missing or foreign type is a
// 400 with an empty list.
func (h *Handler) writeSuggestions(w http.ResponseWriter, r *http.Request, allowed map[domain.SuggestField]bool) {
	field := domain.SuggestField(r.URL.Query().Get("type"))
	term := r.URL.Query().Get("search")
	if term == "" || !allowed[field] {
		writeJSON(w, http.StatusBadRequest, map[string]any{"suggestions": []string{}})
		return
	}
	suggestions, err := h.service.Suggest(r.Context(), field, term)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.service.ListItems(r.Context(), domain.ItemFilter{
		ItemID:       q.Get("Item_ID"),
		SerialNumber: q.Get("Serial_Number"),
		CreateDate:   q.Get("Item_CreateDate"),
		Status:       q.Get("Item_Status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(items))
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req application.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Item created successfully", "Item_ID": id})
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req application.ItemUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := map[string]any{"message": "Item updated successfully", "statusChanged": res.Changed}
	if res.Changed {
		body["statusId"] = res.StatusID
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Item deleted successfully"))
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req application.StatusChangeInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.service.ChangeStatus(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	text := "Status updated successfully"
	if !res.Changed {
		text = "Status unchanged"
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": text, "statusId": res.StatusID})
}

func (h *Handler) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.ItemHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(history))
}

func (h *Handler) handleObjectItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItemsByObject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items})
}

func (h *Handler) handlePlaceItem(w http.ResponseWriter, r *http.Request) {
	var req application.PlaceItemInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.service.PlaceItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Item added successfully", "itemId": id})
}
