package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/annotate"
	"github.com/ayusman/fingercount/internal/app"
	"github.com/ayusman/fingercount/internal/config"
	"github.com/ayusman/fingercount/internal/server"
	"github.com/ayusman/fingercount/internal/store"
	"github.com/ayusman/fingercount/internal/tray"
)

const windowTitle = "Finger Counter"

type options struct {
	configPath string
	image      string
	out        string
	camera     bool
	serve      bool
	tray       bool
	noWindow   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	flag.StringVar(&opts.image, "image", "", "count fingers in this image file")
	flag.StringVar(&opts.out, "out", "", "write the annotated image here (with -image)")
	flag.BoolVar(&opts.camera, "camera", false, "count fingers from the live camera")
	flag.BoolVar(&opts.serve, "serve", false, "run the HTTP dashboard and API")
	flag.BoolVar(&opts.tray, "tray", false, "run in the system tray (implies -serve -camera)")
	flag.BoolVar(&opts.noWindow, "no-window", false, "do not open preview windows")
	flag.Parse()

	fmt.Println("Fingercount - Raised Finger Counter")

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application := app.New(app.Config{
		Store:               st,
		RecordSessions:      cfg.RecordSessions,
		CameraOptions:       cfg.CameraOptions(),
		DetectorConfig:      cfg.DetectorConfig(),
		ImageDetectorConfig: cfg.ImageDetectorConfig(),
		HookDir:             cfg.HookDir,
		HookTimeout:         cfg.HookTimeoutDuration(),
	})
	defer application.Close()

	if err := application.DiscoverHooks(); err != nil {
		log.Printf("Hook discovery failed: %v", err)
	}

	if opts.image == "" && !opts.camera && !opts.serve && !opts.tray {
		opts, err = promptMode(os.Stdin, os.Stdout, opts)
		if err != nil {
			log.Fatalf("Invalid choice: %v", err)
		}
	}

	switch {
	case opts.image != "":
		err = runImage(application, opts)
	case opts.tray:
		err = runTray(application, st, cfg)
	case opts.serve:
		err = runServe(application, st, cfg, opts.camera)
	case opts.camera && opts.noWindow:
		err = runHeadless(application)
	default:
		err = runWindow(application)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// promptMode asks for a mode on in and fills opts accordingly.
func promptMode(in io.Reader, out io.Writer, opts options) (options, error) {
	r := bufio.NewReader(in)

	fmt.Fprintln(out, "Choose input mode:")
	fmt.Fprintln(out, "1. Detect from image")
	fmt.Fprintln(out, "2. Detect from live camera")
	fmt.Fprint(out, "Enter choice (1 or 2): ")

	choice, err := readLine(r)
	if err != nil {
		return opts, err
	}

	switch choice {
	case "1":
		fmt.Fprint(out, "Enter image path: ")
		path, err := readLine(r)
		if err != nil {
			return opts, err
		}
		if path == "" {
			return opts, errors.New("empty image path")
		}
		opts.image = path
	case "2":
		opts.camera = true
	default:
		return opts, fmt.Errorf("unknown choice %q", choice)
	}
	return opts, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runImage(a *app.App, opts options) error {
	result, err := a.CountImage(opts.image)
	if err != nil {
		return fmt.Errorf("count image: %w", err)
	}
	defer result.Close()

	fmt.Printf("Detected %d finger(s)\n", result.Frame.Total)
	for _, h := range result.Frame.Hands {
		fmt.Printf("  hand %d (%s): %s = %d\n", h.Slot+1, h.Handedness, h.States, h.Raw)
	}

	if opts.out != "" {
		if ok := gocv.IMWrite(opts.out, *result.Annotated); !ok {
			return fmt.Errorf("write %s failed", opts.out)
		}
		fmt.Printf("Annotated image written to %s\n", opts.out)
	}

	if opts.noWindow {
		return nil
	}

	window := gocv.NewWindow(windowTitle)
	defer window.Close()
	window.IMShow(*result.Annotated)
	window.WaitKey(0)
	return nil
}

// runWindow shows annotated camera frames until 'q' is pressed.
func runWindow(a *app.App) error {
	cam := a.Camera()
	if err := cam.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer cam.Close()

	if _, err := a.StartSession("window"); err != nil {
		return err
	}
	defer a.EndSession()

	window := gocv.NewWindow(windowTitle)
	defer window.Close()

	for {
		frame, err := cam.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		if _, err := a.ProcessFrame(frame); err != nil {
			log.Printf("Error processing frame: %v", err)
		}
		annotate.DrawHint(frame, "Press 'q' to quit")

		window.IMShow(*frame)
		key := window.WaitKey(1)
		frame.Close()

		if key == 'q' || key == 'Q' {
			return nil
		}
	}
}

// runHeadless runs the background pipeline until interrupted.
func runHeadless(a *app.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe := a.Subscribe(logTotals())
	defer unsubscribe()

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	<-ctx.Done()
	return nil
}

func runServe(a *app.App, st *store.Store, cfg *config.Config, live bool) error {
	srv, unsubscribe := newServer(a, st)
	defer srv.Close()
	defer unsubscribe()

	if live {
		a.SetEnabled(true)
		if err := a.Start(); err != nil {
			return fmt.Errorf("start pipeline: %w", err)
		}
		defer a.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Listen)
		errCh <- srv.ListenAndServe(cfg.Listen)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return nil
	}
}

// runTray serves the dashboard and runs the live pipeline behind a tray
// menu. systray must own the main goroutine.
func runTray(a *app.App, st *store.Store, cfg *config.Config) error {
	srv, unsubscribe := newServer(a, st)
	defer srv.Close()
	defer unsubscribe()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Listen)
		if err := srv.ListenAndServe(cfg.Listen); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()

	t := tray.New(true)
	unsubscribeTray := a.Subscribe(func(u app.Update) { t.SetTotal(u.Total) })
	defer unsubscribeTray()

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if !enabled {
			t.SetTotal(0)
		}
	})
	t.OnDashboard(func() {
		if err := openBrowser("http://" + cfg.Listen); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	t.Run()
	return nil
}

// newServer builds the HTTP server and subscribes it to count updates. The
// returned func ends the subscription.
func newServer(a *app.App, st *store.Store) (*server.Server, func()) {
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Counter:   a,
		Frames:    a,
	})
	unsubscribe := a.Subscribe(func(u app.Update) { srv.Publish(u) })
	return srv, unsubscribe
}

// logTotals returns a subscriber that logs the smoothed total when it changes.
func logTotals() func(app.Update) {
	last := -1
	return func(u app.Update) {
		if u.Total != last {
			log.Printf("Total fingers: %d", u.Total)
			last = u.Total
		}
	}
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.fingercount/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".fingercount", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
