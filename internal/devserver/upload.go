package devserver

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/imaging"
)

// MaxUploadSize caps the multipart body of an upload request.
const MaxUploadSize = 32 << 20

// UploadHandler accepts image uploads. Bytes are validated and hashed but not
// stored; the returned URLs are stable content addresses under BaseURL.
type UploadHandler struct {
	BaseURL string
	Logger  *zap.Logger
}

// Upload handles POST /api/listing/upload/.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		jsonError(w, http.StatusBadRequest, "No images provided")
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if err := imaging.CheckName(fh.Filename); err != nil {
			jsonError(w, http.StatusBadRequest, "Invalid file type for "+fh.Filename)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		if _, err := imaging.Sniff(data); err != nil {
			jsonError(w, http.StatusBadRequest, "Invalid file type for "+fh.Filename)
			return
		}

		sum := sha256.Sum256(data)
		urls = append(urls, strings.TrimRight(h.BaseURL, "/")+"/images/"+hex.EncodeToString(sum[:])+".jpg")
	}

	h.Logger.Info("images uploaded", zap.Int("count", len(urls)))
	jsonResponse(w, http.StatusOK, map[string][]string{"urls": urls})
}
