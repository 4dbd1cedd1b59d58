package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/storyloom/storyloom/internal/services"
)

// Book uploads are plain text; 20 MB covers any novel.
const maxBookUploadBytes = 20 << 20

// BookUploadResponse reports where the book landed and whether a graph
// build was triggered.
type BookUploadResponse struct {
	Filename   string `json:"filename"`
	GraphBuilt bool   `json:"graph_built"`
	Message    string `json:"message,omitempty"`
}

// BookHandler accepts a book upload and triggers the graph builder.
type BookHandler struct {
	dataDir string
	builder services.GraphBuilder
	logger  *slog.Logger
}

func NewBookHandler(dataDir string, builder services.GraphBuilder, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		dataDir: dataDir,
		builder: builder,
		logger:  logger,
	}
}

// ServeHTTP handles POST /v1/book with a multipart "book" file field.
func (h *BookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger, r, "POST")
		return
	}

	if err := r.ParseMultipartForm(maxBookUploadBytes); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid multipart form. Expected a 'book' file field.")
		return
	}
	file, header, err := r.FormFile("book")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Missing 'book' file field.")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		h.logger.Error("Failed to create data directory", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to store book")
		return
	}

	// Flatten the client-supplied name so it cannot escape the data dir.
	filename := filepath.Base(header.Filename)
	if filename == "." || filename == "/" {
		filename = "book.txt"
	}
	if !strings.EqualFold(filepath.Ext(filename), ".txt") {
		writeError(w, h.logger, http.StatusBadRequest, "Only plain-text (.txt) books are accepted.")
		return
	}
	dest := filepath.Join(h.dataDir, filename)

	out, err := os.Create(dest)
	if err != nil {
		h.logger.Error("Failed to create book file", "error", err, "path", dest)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to store book")
		return
	}
	written, err := io.Copy(out, file)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		h.logger.Error("Failed to write book file", "error", err, "close_error", closeErr)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to store book")
		return
	}

	h.logger.Info("Book uploaded", "filename", filename, "bytes", written)

	resp := BookUploadResponse{Filename: filename}
	if h.builder == nil {
		resp.Message = "Book stored. No graph builder is configured."
		writeJSON(w, h.logger, http.StatusAccepted, resp)
		return
	}

	if err := h.builder.Build(r.Context(), dest); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Book stored but graph build failed: %v", err))
		return
	}
	resp.GraphBuilt = true
	writeJSON(w, h.logger, http.StatusCreated, resp)
}
