package http

import "net/http"

func (h *Handler) handleDeviceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DeviceSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleEquipmentByNode(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.EquipmentByNode(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleRecentActivities(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.RecentActivities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
