package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"snapask/src/clipboard"
	"snapask/src/config"
	"snapask/src/eventloop"
	"snapask/src/hotkey"
	"snapask/src/logutil"
	"snapask/src/provider"
	"snapask/src/screenshot"
	"snapask/src/session"
	"snapask/src/singleinstance"
	"snapask/src/surface"
	"snapask/src/tray"
	"snapask/src/worker"
)

// normalizeFlagDashes maps GNU-style --ask to Go's -ask.
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case arg == "--ask":
			os.Args[i] = "-ask"
		case strings.HasPrefix(arg, "--ask="):
			os.Args[i] = "-ask" + arg[len("--ask"):]
		}
	}
}

func main() {
	// Must run before any window or screen metric query.
	enableDPIAwareness()

	ask := flag.Bool("ask", false, "Capture the screen once, print the answer, and exit")
	normalizeFlagDashes()
	flag.Parse()

	if *ask {
		runAskOnce()
		return
	}

	// Load config before anything else; a resident is useless without
	// credentials, so configuration failures abort before any window exists.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	p, err := provider.New(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	log.Printf("Using vendor: %s", p.Name())

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	lockPort := singleinstance.LockPort()
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", lockPort))
	if err != nil {
		if port, found := singleinstance.DetectResidentPort(context.Background()); found {
			log.Printf("Pre-flight: resident detected on port %d", port)
			fmt.Fprintf(os.Stderr, "snapask is already running (port %d)\n", port)
		} else {
			log.Printf("Pre-flight: port %d busy but no resident responded", lockPort)
			fmt.Fprintf(os.Stderr, "port %d is in use by another process\n", lockPort)
		}
		os.Exit(1)
	}
	// We claimed the lock port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, we are the resident", lockPort)
	// ------------------------------------------------

	if err := clipboard.Init(); err != nil {
		// Not fatal: answers still show on the surface, they just won't
		// land on the clipboard.
		log.Printf("Clipboard unavailable: %v", err)
	}

	a := app.New()
	win := surface.NewWindow(a, eventloop.DefaultInstruction())

	pool := worker.New(p)
	loop := eventloop.New(session.New(), win, pool)

	bindings, err := hotkey.Register()
	if err != nil {
		log.Fatalf("Failed to register hotkeys: %v", err)
	}
	loop.StartHotkeys(bindings)
	log.Printf("Hotkeys registered: %s capture, %s add, %s reset, %s quit",
		hotkey.Combo("S"), hotkey.Combo("A"), hotkey.Combo("R"), hotkey.Combo("Q"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var trayIcon *tray.Icon
	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			bindings.Unregister()
			if trayIcon != nil {
				trayIcon.Quit()
			}
			cancel()
			fyne.Do(a.Quit)
		})
	}

	trayIcon = tray.New(tray.Config{
		Title:   "snapask",
		Tooltip: fmt.Sprintf("snapask - press %s to ask about your screen", hotkey.Combo("S")),
		OnQuit:  func() { shutdown() },
	})
	go trayIcon.Run()

	loop.SetOnQuit(shutdown)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		shutdown()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil {
			log.Printf("Event loop stopped: %v", err)
		}
		shutdown()
	}()

	win.ShowAndRun()
}

// runAskOnce delegates to a resident instance when one is listening,
// otherwise captures and dispatches standalone with no window at all.
func runAskOnce() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logutil.Setup(cfg.EnableFileLogging)

	ctx := context.Background()
	delegated, answer, err := singleinstance.NewClient().TryAsk(ctx)
	if delegated {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Delegated to resident")
		deliverAnswer(answer)
		return
	}
	log.Printf("No resident detected, running standalone")

	p, err := provider.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	shot, err := screenshot.CaptureScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Captured %s (%d bytes)", shot.Path, len(shot.Data))

	answer, err = p.Answer(ctx, eventloop.Prompt, [][]byte{shot.Data})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	deliverAnswer(answer)
}

func deliverAnswer(answer string) {
	fmt.Println(answer)
	if err := clipboard.Init(); err == nil {
		if err := clipboard.Write(answer); err != nil {
			log.Printf("Clipboard write failed: %v", err)
		}
	}
}
