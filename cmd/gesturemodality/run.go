package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturemodality/internal/app"
	"github.com/ayusman/gesturemodality/internal/config"
	"github.com/ayusman/gesturemodality/internal/control"
	"github.com/ayusman/gesturemodality/internal/gesture"
	"github.com/ayusman/gesturemodality/internal/mmi"
	"github.com/ayusman/gesturemodality/internal/sensor"
	"github.com/ayusman/gesturemodality/internal/server"
	"github.com/ayusman/gesturemodality/internal/store"
	"github.com/ayusman/gesturemodality/internal/telemetry"
	"github.com/ayusman/gesturemodality/internal/tray"
)

// replayInterval paces recordings at the sensor's 30 Hz frame rate.
const replayInterval = 33 * time.Millisecond

func newRunCmd() *cobra.Command {
	var (
		httpAddr     string
		sensorURL    string
		replayFile   string
		mmiTransport string
		controlAddr  string
		staticDir    string
		withTray     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the gesture modality until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if flags.Changed("sensor") {
				cfg.SensorURL = sensorURL
			}
			if flags.Changed("replay") {
				cfg.ReplayFile = replayFile
			}
			if flags.Changed("mmi") {
				cfg.MMITransport = mmiTransport
			}
			if flags.Changed("control") {
				cfg.ControlAddress = controlAddr
			}
			if flags.Changed("static") {
				cfg.StaticDir = staticDir
			}
			if flags.Changed("tray") {
				cfg.Tray = withTray
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runModality(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "status server address, empty to disable")
	cmd.Flags().StringVar(&sensorURL, "sensor", "", "sensor bridge websocket URL")
	cmd.Flags().StringVar(&replayFile, "replay", "", "play back a recorded session instead of the sensor bridge")
	cmd.Flags().StringVar(&mmiTransport, "mmi", "", "interaction manager transport (http or ws)")
	cmd.Flags().StringVar(&controlAddr, "control", "", "control channel address")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory served by the status server")
	cmd.Flags().BoolVar(&withTray, "tray", false, "show the system tray")

	return cmd
}

func runModality(ctx context.Context, cfg config.Config) error {
	shutdown, err := telemetry.Setup(ctx, "gesturemodality", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	source, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	transport, err := openTransport(ctx, cfg)
	if err != nil {
		return err
	}
	header := mmi.DefaultHeader()
	header.Source = cfg.Modality
	client := mmi.NewClient(header, transport)
	client.OnRegistered = app.SessionRecorder(st)
	defer client.Close()

	var (
		tr   *tray.Tray
		view gesture.View
	)
	if cfg.Tray {
		tr = tray.New()
		view = tr
	}

	ctrl := control.NewServer(cfg.ControlConfig())
	a := app.New(app.Config{
		Source:  source,
		Client:  client,
		Control: ctrl,
		Store:   st,
		View:    view,
	})

	hub := server.NewHub()
	a.RegisterRecognitionCallback(hub.BroadcastRecognition)
	a.RegisterRecognitionCallback(func(rec store.Recognition) {
		log.Printf("recognized %s (%.2f) for body %d, notified=%t", rec.Gesture, rec.Confidence, rec.TrackingID, rec.Notified)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.Run(gctx)
	})
	if cfg.HTTPAddr != "" {
		srv := server.New(server.Config{
			StaticDir: cfg.StaticDir,
			Store:     st,
			Status:    a,
			Events:    hub,
		})
		g.Go(func() error {
			if err := srv.Run(gctx, cfg.HTTPAddr); err != nil {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
	}

	if tr != nil {
		runTray(gctx, tr, a, ctrl, cfg.HTTPAddr, cancel)
	}

	return g.Wait()
}

func openSource(ctx context.Context, cfg config.Config) (sensor.Source, error) {
	if cfg.ReplayFile != "" {
		f, err := os.Open(cfg.ReplayFile)
		if err != nil {
			return nil, fmt.Errorf("open recording: %w", err)
		}
		log.Printf("replaying %s", cfg.ReplayFile)
		return &replay{ReplaySource: sensor.NewReplaySource(f, replayInterval), file: f}, nil
	}

	src, err := sensor.DialBridge(ctx, cfg.SensorURL)
	if err != nil {
		return nil, err
	}
	log.Printf("connected to sensor bridge %s", cfg.SensorURL)
	return src, nil
}

// replay closes the recording together with the source.
type replay struct {
	*sensor.ReplaySource
	file io.Closer
}

func (r *replay) Close() error {
	return errors.Join(r.ReplaySource.Close(), r.file.Close())
}

func openTransport(ctx context.Context, cfg config.Config) (mmi.Transport, error) {
	endpoint := cfg.MMIEndpoint()
	switch cfg.MMITransport {
	case config.TransportWebSocket:
		t, err := mmi.DialWebSocket(ctx, endpoint.URL("ws"))
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return mmi.NewHTTPTransport(endpoint.URL("http"), &http.Client{Timeout: 5 * time.Second}), nil
	}
}

// runTray blocks on the tray until it quits or ctx is done.
func runTray(ctx context.Context, tr *tray.Tray, a *app.App, ctrl *control.Server, httpAddr string, cancel context.CancelFunc) {
	tr.OnToggle(a.SetEnabled)
	tr.OnQuit(cancel)
	tr.OnOpenStatus(func() {
		if httpAddr == "" {
			log.Println("status server disabled")
			return
		}
		log.Printf("status: http://%s/api/status", displayAddr(httpAddr))
	})

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				tr.Quit()
				return
			case <-ticker.C:
				tr.SetSpeakActive(ctrl.SpeakActive())
			}
		}
	}()

	tr.Run()
}

// displayAddr turns a listen address like ":8080" into a browsable one.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
