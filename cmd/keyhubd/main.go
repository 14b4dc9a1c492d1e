// Command keyhubd is a small demonstration embedder: it registers a few
// global shortcuts through a Center wired to the real OS backend, reads
// repeat rates from fyne preferences, and tears everything down on SIGINT.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"fyne.io/fyne/v2/app"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"keyhub"
	"keyhub/log"
	"keyhub/prefs"
	"keyhub/shutdown"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	mainthread.Init(run)
}

func run() {
	logPath := flag.String("logpath", "", "directory for the diagnostics log (default: OS log dir)")
	flag.Parse()

	dir, err := log.ResolveDir(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(dir)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "cannot init logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	fyneApp := app.NewWithID("design.keyhub.keyhubd")
	store := prefs.NewStore(fyneApp.Preferences())

	center := keyhub.NewCenter(
		keyhub.WithLogger(log.Logger()),
		keyhub.WithRepeatSource(store),
		keyhub.WithMainQueue(func(f func()) { go mainthread.Call(f) }),
	)

	hello := keyhub.NewHotKey("demo.hello",
		keyhub.NewCombo(hotkey.KeySpace, hotkey.ModCtrl, hotkey.ModShift),
		keyhub.QueueCaller,
		func(h *keyhub.HotKey) { log.Infof("%s fired", h.Identifier()) })
	hello.SetDetectHold(true)
	if !center.Register(hello) {
		log.Errorf("could not register %s (combo taken?)", hello.Identifier())
	}

	// Matched only when the embedder feeds Center.FlagsChanged from a raw
	// modifier monitor; registered here to show the shape.
	doubleCtrl := keyhub.NewHotKey("demo.double-ctrl",
		keyhub.NewDoubleTapCombo(hotkey.ModCtrl),
		keyhub.QueueCaller,
		func(h *keyhub.HotKey) { log.Infof("%s fired", h.Identifier()) })
	center.Register(doubleCtrl)

	log.Infof("keyhubd running; ctrl+shift+space to test, ctrl+c to quit")

	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	<-sig

	center.Shutdown()
	log.Info("bye")
}
