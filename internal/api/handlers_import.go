package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/importer"
)

// maxImportSize caps the multipart upload at 10 MiB.
const maxImportSize = 10 << 20

// ImportCSV handles POST /cards/import with multipart field "file".
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.Error(w, http.StatusBadRequest, "ファイルが選択されていません")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		httpkit.Error(w, http.StatusBadRequest, "CSVファイルを選択してください")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("reading upload failed", "filename", header.Filename, "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "CSVのインポートに失敗しました")
		return
	}

	res, err := h.importer.Import(r.Context(), raw)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			httpkit.Error(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		h.logger.Error("csv import failed", "filename", header.Filename, "err", err)
		httpkit.JSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "CSVのインポートに失敗しました",
		})
		return
	}

	httpkit.JSON(w, http.StatusOK, res)
}
