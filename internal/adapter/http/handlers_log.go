package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"caltrack/internal/app"

	"github.com/go-chi/chi/v5"
)

const maxPhotoBytes = 10 << 20

var errNoPhoto = errors.New("no photo uploaded")

func (s *Server) handlePhotoLog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("photo upload: %w", err))
		return
	}

	file, header, err := formFile(r, "image", "photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("photo upload: %w", err))
		return
	}
	if len(data) > maxPhotoBytes {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("photo must be 10MB or smaller"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	entry, err := s.photos.IngestPhoto(r.Context(), data, mimeType, r.FormValue("user"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// formFile returns the first present upload among the given field names.
func formFile(r *http.Request, names ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range names {
		file, header, err := r.FormFile(name)
		if err == nil {
			return file, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("photo upload: %w", err)
		}
	}
	return nil, nil, errNoPhoto
}

type manualRequest struct {
	User     string `json:"user"`
	Item     string `json:"item"`
	Calories number `json:"calories"`
	Protein  number `json:"protein"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

func (s *Server) handleManualLog(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.logs.LogManual(r.Context(), app.ManualInput{
		User:     req.User,
		Item:     req.Item,
		Calories: req.Calories.Value,
		Protein:  req.Protein.Value,
		Category: req.Category,
		Date:     req.Date,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	// The body is optional; ?user= works too.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	user := req.User
	if user == "" {
		user = r.URL.Query().Get("user")
	}

	deleted, err := s.logs.Delete(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}
