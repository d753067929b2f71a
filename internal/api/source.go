package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/JaimeStill/lading/pkg/handlers"
	"github.com/JaimeStill/lading/pkg/routes"
	"github.com/JaimeStill/lading/pkg/storage"
)

// sourcePrefix is the blob prefix of uploaded corpus sources.
const sourcePrefix = "sources/"

type sourceHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newSourceHandler(store storage.System, logger *slog.Logger) *sourceHandler {
	return &sourceHandler{
		store:  store,
		logger: logger.With("handler", "sources"),
	}
}

func (h *sourceHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/sources",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

// download streams an uploaded reference source. Snapshot blobs and other
// prefixes are not reachable through this route.
func (h *sourceHandler) download(w http.ResponseWriter, r *http.Request) {
	key := sourcePrefix + r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("source download interrupted", "key", key, "error", err)
	}
}
