package http

import (
	"net/http"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/go-chi/chi/v5"
)

var roomSuggestFields = map[domain.SuggestField]bool{
	domain.SuggestBranchNumber: true,
	domain.SuggestBranchName:   true,
	domain.SuggestFloor:        true,
	domain.SuggestRoom:         true,
}

func (h *Handler) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.ListNodes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(nodes))
}

func (h *Handler) handleRoomOverview(w http.ResponseWriter, r *http.Request) {
	h.writeRoomOverview(w, r, domain.RoomFilter{})
}

func (h *Handler) handleSearchRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.writeRoomOverview(w, r, domain.RoomFilter{
		BranchNumber: q.Get("branch_number"),
		BranchName:   q.Get("branch_name"),
		Building:     q.Get("building"),
		Floor:        q.Get("floor"),
		Room:         q.Get("room"),
	})
}

func (h *Handler) writeRoomOverview(w http.ResponseWriter, r *http.Request, filter domain.RoomFilter) {
	rows, err := h.service.RoomOverview(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	text := "Rooms retrieved successfully"
	if len(rows) == 0 {
		text = "No rooms found"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows, "message": text})
}

func (h *Handler) handleRoomSuggestions(w http.ResponseWriter, r *http.Request) {
	h.writeSuggestions(w, r, roomSuggestFields)
}

func (h *Handler) handleNodeRefs(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.ListNodeRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (h *Handler) handleSearchNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.SearchNodes(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (h *Handler) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req application.NodeInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	node, err := h.service.CreateNode(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Branch created successfully",
		"node": map[string]string{
			"id":       node.NodeID,
			"name":     node.Name,
			"location": node.Location,
			"building": node.Building,
		},
	})
}

func (h *Handler) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req application.NodeUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateNode(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Branch updated successfully"))
}

func (h *Handler) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Branch deleted successfully"))
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req application.RoomInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateRoom(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Room created successfully",
		"room": map[string]string{
			"id":     created.Room.RoomID,
			"nodeId": created.Room.NodeID,
			"floor":  created.Room.Floor,
			"name":   created.Room.Name,
		},
		"object": map[string]string{"id": created.ObjectID},
	})
}

func (h *Handler) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req application.RoomUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateRoom(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Room updated successfully"))
}

func (h *Handler) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRoom(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Room deleted successfully"))
}

func (h *Handler) handleRoomsByNode(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRoomsByNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(rooms))
}

func (h *Handler) handleRoomObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.service.RoomObjects(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objects)
}

func (h *Handler) handleCreateObject(w http.ResponseWriter, r *http.Request) {
	var req application.ObjectInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.service.CreateObject(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Object created successfully", "objectId": id})
}

func (h *Handler) handleObjectsByRoom(w http.ResponseWriter, r *http.Request) {
	objects, err := h.service.ListObjectsByRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(objects))
}

func (h *Handler) handleUpdateObject(w http.ResponseWriter, r *http.Request) {
	var req application.ObjectUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateObject(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Object updated successfully"))
}

func (h *Handler) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteObject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Object deleted successfully"))
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetObjectDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": detail})
}

func (h *Handler) handleObjectDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ListObjectDetails(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(details))
}

func (h *Handler) handlePlacements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.service.Placements(r.Context(), domain.PlacementFilter{
		ObjectName: q.Get("Object_Name"),
		NodeName:   q.Get("Node_Name"),
		RoomName:   q.Get("Room_Name"),
		FloorName:  q.Get("Floor_Name"),
		Page:       queryInt(r, "page", 1),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(rows))
}
