package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError converts err into the {error: message} envelope. Upstream and
// internal details only go to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFor(err)
	reqID := w.Header().Get(requestIDHeader)
	attrs := []any{"request_id", reqID, "path", r.URL.Path, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}
	body := map[string]any{"error": clientMessage(err)}
	if status >= http.StatusInternalServerError && reqID != "" {
		body["request_id"] = reqID
	}
	writeJSON(w, status, body)
}

func isValidGroup(group string) bool {
	for _, g := range validGroups {
		if g == group {
			return true
		}
	}
	return false
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func isAllowedImage(name string) bool {
	_, ok := allowedExtensions[fileExt(name)]
	return ok
}

func mediaTypeFor(name string) string {
	if mt, ok := mediaTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return defaultMediaType
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// secureFilename folds name to a flat ASCII filename: no separators, no
// leading dots, only [A-Za-z0-9_.-].
func secureFilename(name string) string {
	s := norm.NFKD.String(name)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

func resolvePathUnderRoot(root, rel string) (string, error) {
	cleanRel := filepath.Clean(filepath.FromSlash(strings.TrimSpace(rel)))
	if cleanRel == "." || cleanRel == "" || cleanRel == string(os.PathSeparator) {
		return "", errors.New("invalid path")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(filepath.Join(absRoot, cleanRel))
	if err != nil {
		return "", err
	}
	if absPath == absRoot || !strings.HasPrefix(absPath, absRoot+string(os.PathSeparator)) {
		return "", errors.New("path traversal")
	}
	return absPath, nil
}

func validDate(raw string) bool {
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, raw)
	return err == nil
}

func parsePositiveInt(raw string, fallback int) int {
	val := strings.TrimSpace(raw)
	if val == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}

func toMap(v interface{}) map[string]any {
	b, _ := json.Marshal(v)
	m := make(map[string]any)
	_ = json.Unmarshal(b, &m)
	return m
}

func stringFromAny(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func imageRefs(group string, names []string) []imageRef {
	refs := make([]imageRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, imageRef{Filename: name, Path: fmt.Sprintf("/uploads/%s/%s", group, url.PathEscape(name))})
	}
	return refs
}
