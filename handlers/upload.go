package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 2 << 20 // 2MB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UploadHandler stores an uploaded image on disk and hands back a stable
// public URL; only that URL string ends up on the product row.
type UploadHandler struct {
	Dir     string
	BaseURL string
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondMessage(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	// sniff the real content type rather than trusting the header
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		respondMessage(w, http.StatusBadRequest, "unreadable file")
		return
	}
	contentType := http.DetectContentType(buf[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respondMessage(w, http.StatusBadRequest, "only jpg/png allowed")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		logrus.WithError(err).Error("failed to create upload dir")
		respondMessage(w, http.StatusInternalServerError, "upload failed")
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		logrus.WithError(err).Error("failed to create upload file")
		respondMessage(w, http.StatusInternalServerError, "upload failed")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logrus.WithError(err).WithField("filename", header.Filename).Error("failed to write upload")
		respondMessage(w, http.StatusInternalServerError, "upload failed")
		return
	}

	url := fmt.Sprintf("%s/uploads/%s", strings.TrimRight(h.BaseURL, "/"), name)
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
