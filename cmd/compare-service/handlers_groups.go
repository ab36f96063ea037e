package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (st *appState) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{}
	for _, group := range validGroups {
		names, err := st.buckets.List(group)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page.Groups = append(page.Groups, indexGroup{
			Name:   group,
			Label:  strings.ToUpper(group[:1]) + group[1:],
			Images: imageRefs(group, names),
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		logger.Error("failed to render index", "request_id", w.Header().Get(requestIDHeader), "error", err)
	}
}

func (st *appState) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			writeTooLarge(w, st.cfg.maxUploadBytes)
			return
		}
		writeError(w, r, ErrMissingFile)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	group := r.FormValue("group")
	if !isValidGroup(group) {
		writeError(w, r, fmt.Errorf("%w: %q", ErrInvalidGroup, group))
		return
	}
	if strings.TrimSpace(header.Filename) == "" {
		writeError(w, r, ErrMissingFile)
		return
	}
	if !isAllowedImage(header.Filename) {
		writeError(w, r, fmt.Errorf("%w: %q", ErrInvalidExtension, header.Filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			writeTooLarge(w, st.cfg.maxUploadBytes)
			return
		}
		writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	name, err := st.buckets.Store(group, header.Filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("image uploaded",
		"request_id", w.Header().Get(requestIDHeader),
		"group", group,
		"filename", name,
		"bytes", len(data),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Image uploaded to the %s group.", group),
		"filename": name,
	})
}

func (st *appState) handleClear(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	removed, err := st.buckets.Clear(group)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("group cleared", "request_id", w.Header().Get(requestIDHeader), "group", group, "removed", removed)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("All images in the %s group were deleted.", group),
		"removed": removed,
	})
}

func (st *appState) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	filename := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(filename); err == nil {
		filename = unescaped
	}
	if !isValidGroup(group) {
		writeError(w, r, ErrNotFound)
		return
	}
	data, err := st.buckets.Read(group, filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", mediaTypeFor(filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
