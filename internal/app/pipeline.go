package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/annotate"
	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/fingers"
	"github.com/ayusman/fingercount/internal/hook"
	"github.com/ayusman/fingercount/internal/store"
)

// ErrNoDetector is returned when a frame is processed without a detector.
var ErrNoDetector = errors.New("no hand detector configured")

// StartSession begins a new live stream: smoothing history, frame index and
// the hook baseline are reset, and a camera session is recorded when enabled.
// It returns the session ID, which is empty when sessions are not recorded.
func (a *App) StartSession(label string) (string, error) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	a.counter.Reset()
	a.frameIndex = 0
	a.lastTotal = 0
	a.sessionID = ""

	if !a.recording() {
		return "", nil
	}

	sess := &store.Session{Source: store.SourceCamera, Label: label}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	a.sessionID = sess.ID
	log.Printf("Started camera session %s", sess.ID)
	return sess.ID, nil
}

// EndSession stamps the end time of the current live session, if any.
func (a *App) EndSession() {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	if a.sessionID == "" {
		return
	}
	if err := a.config.Store.Sessions().End(a.sessionID, time.Now()); err != nil {
		log.Printf("Error ending session %s: %v", a.sessionID, err)
	}
	log.Printf("Ended camera session %s after %d frames", a.sessionID, a.frameIndex)
	a.sessionID = ""
}

// ProcessFrame counts the fingers in the next live frame. The frame is
// annotated in place. Counts are smoothed across calls, recorded to the
// current session, published to subscribers, and hooks are notified when
// the smoothed total changes. Frames are processed one at a time in call
// order.
func (a *App) ProcessFrame(frame *gocv.Mat) (fingers.Frame, error) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	det := a.Detector()
	if det == nil {
		return fingers.Frame{}, ErrNoDetector
	}

	hands, err := det.Detect(frame)
	if err != nil {
		return fingers.Frame{}, fmt.Errorf("detect hands: %w", err)
	}

	counted, err := a.counter.Count(hands)
	if err != nil {
		return fingers.Frame{}, err
	}

	annotate.Draw(frame, hands, counted)
	if jpeg, err := capture.EncodeJPEG(frame); err == nil {
		a.setLatest(jpeg)
	}

	index := a.frameIndex
	a.frameIndex++

	if a.sessionID != "" {
		if err := a.config.Store.Counts().Record(a.sessionID, index, handRecords(counted)); err != nil {
			log.Printf("Error recording frame %d: %v", index, err)
		}
	}

	now := time.Now()
	a.publish(Update{
		SessionID:  a.sessionID,
		FrameIndex: index,
		Hands:      counted.Hands,
		Total:      counted.Total,
		Time:       now,
	})

	if counted.Total != a.lastTotal {
		a.hooks.Notify(&hook.Event{
			Event:      hook.EventCountChanged,
			SessionID:  a.sessionID,
			FrameIndex: index,
			Total:      counted.Total,
			Previous:   a.lastTotal,
			Hands:      handSummaries(counted),
			Time:       now,
		})
		a.lastTotal = counted.Total
	}

	return counted, nil
}

// Start opens the camera and begins the live counting pipeline.
func (a *App) Start() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	// Don't start if already running
	if a.IsRunning() {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	fps := a.config.CameraOptions.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	a.camera.SetFPS(fps)

	if _, err := a.StartSession(""); err != nil {
		a.camera.Close()
		return err
	}

	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	a.mu.Lock()
	a.stopCh, a.doneCh = stopCh, doneCh
	a.mu.Unlock()

	go a.runPipeline(stopCh, doneCh, time.Second/time.Duration(fps))

	log.Printf("Counting pipeline started at %d fps", fps)
	return nil
}

// Stop halts the pipeline, waits for the in-flight frame, closes the camera
// and ends the session.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.EndSession()

	log.Println("Counting pipeline stopped")
}

// IsRunning reports whether the pipeline is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// runPipeline reads and processes one camera frame per tick until stopCh is
// closed. Unreadable frames and detector failures are logged and skipped.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}, interval time.Duration) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				// Log repeated read errors once.
				if msg := err.Error(); msg != lastErr {
					log.Printf("Error reading frame: %v", err)
					lastErr = msg
				}
				continue
			}
			lastErr = ""

			if _, err := a.ProcessFrame(frame); err != nil {
				log.Printf("Error processing frame: %v", err)
			}
			frame.Close()
		}
	}
}

func (a *App) recording() bool {
	return a.config.Store != nil && a.config.RecordSessions
}

func handRecords(f fingers.Frame) []store.HandRecord {
	records := make([]store.HandRecord, len(f.Hands))
	for i, h := range f.Hands {
		records[i] = store.HandRecord{
			Slot:       h.Slot,
			Handedness: h.Handedness,
			States:     h.States.String(),
			Raw:        h.Raw,
			Smoothed:   h.Smoothed,
		}
	}
	return records
}

func handSummaries(f fingers.Frame) []hook.HandSummary {
	out := make([]hook.HandSummary, len(f.Hands))
	for i, h := range f.Hands {
		out[i] = hook.HandSummary{Slot: h.Slot, Handedness: h.Handedness, Count: h.Smoothed}
	}
	return out
}
