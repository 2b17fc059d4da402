// Package app wires detection, finger counting, storage and hooks into the
// fingercount application.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/detector"
	"github.com/ayusman/fingercount/internal/fingers"
	"github.com/ayusman/fingercount/internal/hook"
	"github.com/ayusman/fingercount/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	// Store records sessions when RecordSessions is set. May be nil.
	Store          *store.Store
	RecordSessions bool

	// Camera overrides the device camera built from CameraOptions.
	Camera        capture.Camera
	CameraOptions capture.Options

	// Detector overrides the live MediaPipe detector built from
	// DetectorConfig.
	Detector       detector.Detector
	DetectorConfig detector.Config

	// ImageDetector overrides the still-image MediaPipe detector built from
	// ImageDetectorConfig. When only Detector is given, still images share it.
	ImageDetector       detector.Detector
	ImageDetectorConfig detector.Config

	HookDir     string
	HookTimeout time.Duration
}

// Update is published to subscribers after every processed live frame.
type Update struct {
	SessionID  string              `json:"session_id,omitempty"`
	FrameIndex int                 `json:"frame_index"`
	Hands      []fingers.HandCount `json:"hands"`
	Total      int                 `json:"total"`
	Time       time.Time           `json:"time"`
}

// App counts raised fingers in still images and live camera frames.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	imageDet detector.Detector
	hookMgr  *hook.Manager
	hooks    *hook.Dispatcher

	enabled     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	latest      []byte
	subscribers map[int]func(Update)
	nextSubID   int
	mu          sync.RWMutex

	// runMu serializes Start and Stop.
	runMu sync.Mutex

	// procMu serializes frame processing and guards the stream state below.
	procMu     sync.Mutex
	counter    *fingers.Counter
	sessionID  string
	frameIndex int
	lastTotal  int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	cam := config.Camera
	if cam == nil {
		cam = capture.NewCamera(config.CameraOptions)
	}

	hookMgr := hook.NewManager(config.HookDir)

	a := &App{
		config:      config,
		camera:      cam,
		detector:    config.Detector,
		imageDet:    config.ImageDetector,
		hookMgr:     hookMgr,
		hooks:       hook.NewDispatcher(hookMgr, hook.NewExecutor(config.HookTimeout), 0),
		subscribers: make(map[int]func(Update)),
		counter:     fingers.NewCounter(),
	}

	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}

		if a.imageDet == nil {
			imageConfig := config.ImageDetectorConfig
			imageConfig.Mode = detector.ModeImage
			if mp, err := detector.NewMediaPipeDetector(imageConfig); err == nil {
				a.imageDet = mp
			}
		}
	}

	if a.imageDet == nil {
		a.imageDet = a.detector
	}

	a.hooks.Start()
	return a
}

// SetEnabled enables or disables live counting.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether live counting is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the live hand detector. A still-image detector that was
// shared with the live one follows the change.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.imageDet == a.detector {
		a.imageDet = d
	}
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetImageDetector sets the detector used for still images.
func (a *App) SetImageDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.imageDet = d
}

// ImageDetector returns the detector used for still images.
func (a *App) ImageDetector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.imageDet
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Store returns the session store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// HookManager returns the hook manager.
func (a *App) HookManager() *hook.Manager {
	return a.hookMgr
}

// DiscoverHooks scans the hook directory and loads available hooks.
func (a *App) DiscoverHooks() error {
	if err := a.hookMgr.Discover(); err != nil {
		return err
	}
	log.Printf("Loaded %d hooks from %s", len(a.hookMgr.List()), a.hookMgr.HookDir())
	return nil
}

// Subscribe registers fn to receive every Update. fn runs on the processing
// goroutine and must not block. The returned func removes the subscription.
func (a *App) Subscribe(fn func(Update)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subscribers, id)
			a.mu.Unlock()
		})
	}
}

// LatestJPEG returns the most recent annotated live frame, or nil before the
// first one. The returned slice must not be modified.
func (a *App) LatestJPEG() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

func (a *App) publish(u Update) {
	a.mu.RLock()
	subs := make([]func(Update), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	a.mu.RUnlock()

	for _, fn := range subs {
		fn(u)
	}
}

func (a *App) setLatest(jpeg []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latest = jpeg
}

// Close stops the pipeline and releases the detector and hook worker.
func (a *App) Close() error {
	a.Stop()
	a.hooks.Stop()

	a.mu.RLock()
	live, still := a.detector, a.imageDet
	a.mu.RUnlock()

	var firstErr error
	for _, d := range []detector.Detector{live, still} {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if live == still {
			break
		}
	}
	return firstErr
}
