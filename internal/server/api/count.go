package api

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/ayusman/fingercount/internal/app"
	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/fingers"
)

// MaxImageBytes bounds uploaded images.
const MaxImageBytes = 10 << 20

// ImageCounter counts fingers in an encoded image.
type ImageCounter interface {
	CountImageBytes(data []byte) (*app.ImageResult, error)
}

// CountHandler handles POST /api/count.
type CountHandler struct {
	counter ImageCounter
}

// NewCountHandler creates a new CountHandler.
func NewCountHandler(c ImageCounter) *CountHandler {
	return &CountHandler{counter: c}
}

type countResponse struct {
	SessionID string              `json:"session_id,omitempty"`
	Hands     []fingers.HandCount `json:"hands"`
	Total     int                 `json:"total"`
}

// ServeHTTP accepts a JPEG or PNG as the raw request body or as the multipart
// field "image". It responds with the per-hand counts, or with the annotated
// JPEG when the annotated query parameter is true.
func (h *CountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := readImage(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.counter.CountImageBytes(data)
	if err != nil {
		switch {
		case errors.Is(err, fingers.ErrInvalidHandShape):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, app.ErrNoDetector):
			writeError(w, http.StatusServiceUnavailable, "Hand detector unavailable")
		default:
			log.Printf("count image: %v", err)
			writeError(w, http.StatusBadRequest, "Failed to count fingers in image")
		}
		return
	}
	defer res.Close()

	if annotated, _ := strconv.ParseBool(r.URL.Query().Get("annotated")); annotated {
		jpeg, err := capture.EncodeJPEG(res.Annotated)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to encode image")
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("X-Finger-Total", strconv.Itoa(res.Frame.Total))
		w.Write(jpeg)
		return
	}

	hands := res.Frame.Hands
	if hands == nil {
		hands = []fingers.HandCount{}
	}
	writeJSON(w, http.StatusOK, countResponse{
		SessionID: res.SessionID,
		Hands:     hands,
		Total:     res.Frame.Total,
	})
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("multipart field \"image\" is required")
		}
		defer file.Close()
		return readAll(file)
	}

	return readAll(r.Body)
}

func readAll(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.New("failed to read image")
	}
	if len(data) == 0 {
		return nil, errors.New("image is required")
	}
	return data, nil
}
