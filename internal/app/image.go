package app

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/annotate"
	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/detector"
	"github.com/ayusman/fingercount/internal/fingers"
	"github.com/ayusman/fingercount/internal/store"
)

// ImageResult is the outcome of counting fingers in a still image.
type ImageResult struct {
	// SessionID is empty when sessions are not recorded.
	SessionID string
	Frame     fingers.Frame
	Hands     []detector.HandLandmarks
	// Annotated is the input image with skeletons and counts drawn on it.
	// The caller must close it.
	Annotated *gocv.Mat
}

// Close releases the annotated image.
func (r *ImageResult) Close() error {
	if r.Annotated == nil {
		return nil
	}
	err := r.Annotated.Close()
	r.Annotated = nil
	return err
}

// CountImage counts the raised fingers in the image file at path. Still
// images are not smoothed.
func (a *App) CountImage(path string) (*ImageResult, error) {
	img, err := capture.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return a.countStill(img, filepath.Base(path))
}

// CountImageBytes counts the raised fingers in an encoded JPEG or PNG image.
func (a *App) CountImageBytes(data []byte) (*ImageResult, error) {
	img, err := capture.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return a.countStill(img, "upload")
}

// countStill takes ownership of img. Still images go to the image-mode
// detector; when that is the live detector too, detection waits for the
// in-flight live frame.
func (a *App) countStill(img *gocv.Mat, label string) (*ImageResult, error) {
	a.mu.RLock()
	det, shared := a.imageDet, a.imageDet == a.detector
	a.mu.RUnlock()
	if det == nil {
		img.Close()
		return nil, ErrNoDetector
	}

	if shared {
		a.procMu.Lock()
	}
	hands, err := det.Detect(img)
	if shared {
		a.procMu.Unlock()
	}
	if err != nil {
		img.Close()
		return nil, fmt.Errorf("detect hands: %w", err)
	}

	frame, err := fingers.CountHands(hands)
	if err != nil {
		img.Close()
		return nil, err
	}

	annotate.Draw(img, hands, frame)

	result := &ImageResult{Frame: frame, Hands: hands, Annotated: img}
	if a.recording() {
		id, err := a.recordStill(label, frame)
		if err != nil {
			log.Printf("Error recording image session: %v", err)
		}
		result.SessionID = id
	}
	return result, nil
}

func (a *App) recordStill(label string, frame fingers.Frame) (string, error) {
	now := time.Now()
	sess := &store.Session{Source: store.SourceImage, Label: label, StartedAt: now, EndedAt: &now}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := a.config.Store.Counts().Record(sess.ID, 0, handRecords(frame)); err != nil {
		return sess.ID, fmt.Errorf("record counts: %w", err)
	}
	return sess.ID, nil
}
