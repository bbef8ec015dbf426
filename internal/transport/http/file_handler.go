package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/metrics"
	"github.com/meetgrid/meet-service/internal/storage"
	httpmw "github.com/meetgrid/meet-service/internal/transport/http/middleware"
	"github.com/meetgrid/meet-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
)

func fileItem(f *domain.File) FileItem {
	return FileItem{
		ID:           f.ID,
		RoomID:       f.RoomID,
		UserID:       strconv.FormatInt(f.UserID, 10),
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		SizeBytes:    f.SizeBytes,
		CreatedAt:    f.CreatedAt,
	}
}

// POST /rooms/{id}/files  multipart field "file"
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no file provided"})
		return
	}
	defer src.Close()

	if header.Size > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
		return
	}

	f, err := h.fileSvc.Upload(r.Context(), roomID, userID, header.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotInRoom):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "user not in room"})
		case errors.Is(err, storage.ErrInvalidFilename):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid filename"})
		default:
			slog.Error("handler.UploadFile:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	h.hub.Broadcast(roomID, ws.Message{Type: ws.TypeFileUploaded, Payload: ws.FileUploadedPayload{
		RoomID:      f.RoomID,
		FileID:      f.ID,
		UserID:      strconv.FormatInt(f.UserID, 10),
		Name:        f.OriginalName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		TSUnix:      f.CreatedAt.Unix(),
	}})
	metrics.FilesUploadedTotal.Inc()

	writeJSON(w, http.StatusCreated, fileItem(f))
}

// GET /rooms/{id}/files?after=&limit=
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.fileSvc.List(r.Context(), roomID, after, limit)
	if err != nil {
		slog.Error("handler.ListFiles:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := FilesResponse{Items: make([]FileItem, 0, len(items)), NextCursor: next}
	for i := range items {
		resp.Items = append(resp.Items, fileItem(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /files/{fileID}/download
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	f, rc, err := h.fileSvc.OpenForDownload(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "file not found"})
			return
		}
		slog.Error("handler.DownloadFile:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.OriginalName))
	http.ServeContent(w, r, f.OriginalName, f.CreatedAt, rc)
}

// DELETE /files/{fileID}
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	userID := httpmw.UserIDFromCtx(r.Context())

	err := h.fileSvc.Delete(r.Context(), fileID, userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case errors.Is(err, domain.ErrFileNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "file not found"})
	case errors.Is(err, domain.ErrNotUploader):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "only the uploader can delete a file"})
	default:
		slog.Error("handler.DeleteFile:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
