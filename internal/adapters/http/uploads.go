package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	var req application.ChunkInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.service.UploadChunk(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !res.Complete {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Chunk uploaded successfully"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Image uploaded successfully", "imagePath": res.ImagePath})
}

func (h *Handler) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	body, info, err := h.service.OpenUpload(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if info.ETag != "" {
		w.Header().Set("ETag", info.ETag)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("key", info.Key).Msg("upload stream interrupted")
	}
}
