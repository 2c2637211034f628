// Command oldplay is the headless driver wiring config, the coordinator,
// the audio engine, the background indexer, and the MPRIS remote surface
// together. Grounded on the teacher's cmd/modplay/main.go + play.go for
// signal handling, the keyboard listener, and the portaudio lifecycle,
// with the pattern-grid rendering (out of scope for this module) replaced
// by a terse now-playing status line.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"

	"github.com/oldplay/oldplay/config"
	"github.com/oldplay/oldplay/coordinator"
	"github.com/oldplay/oldplay/engine"
	"github.com/oldplay/oldplay/indexer"
	"github.com/oldplay/oldplay/internal/trackerchip"
	"github.com/oldplay/oldplay/player"
	"github.com/oldplay/oldplay/remote"
	"github.com/oldplay/oldplay/song"
	"github.com/oldplay/oldplay/value"
)

var (
	cyan   = color.New(color.FgCyan).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

func main() {
	args, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if args.NoColor {
		color.NoColor = true
	}
	if len(args.Songs) == 0 {
		fmt.Fprintln(os.Stderr, "oldplay: missing song filenames")
		os.Exit(1)
	}

	logFile, err := os.OpenFile(".oldplay.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.Lshortfile)

	if err := ensureDataDir(); err != nil {
		logger.Printf("data dir: %v", err)
	}

	d := newDriver(args, logger)
	if err := d.Run(); err != nil {
		logger.Printf("fatal: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ensureDataDir creates the oldplay-data directory under the user cache
// directory ($XDG_CACHE_HOME on Linux). Nothing is extracted into it:
// internal/trackerchip is self-contained and needs no plugin data, so this
// only guarantees the directory exists for any future ChipPlayer backend.
func ensureDataDir() error {
	cache, err := os.UserCacheDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(cache, "oldplay-data"), 0o755)
}

// driver owns the wiring between the coordinator, the engine, the
// indexer, and the MPRIS remote, plus the terminal lifecycle (signals,
// keyboard, a single status line). It plays the role of the teacher's
// AudioPlayer, stripped of pattern-grid rendering.
type driver struct {
	args   config.Args
	logger *log.Logger

	clock  atomic.Int64
	eng    *engine.Engine
	coord  *coordinator.Coordinator
	remote remote.Remote

	uiWriter io.Writer

	ctx      context.Context
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	lastLine string
}

func newDriver(args config.Args, logger *log.Logger) *driver {
	uiw := io.Writer(os.Stdout)
	if args.NoTerm {
		uiw = io.Discard
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &driver{args: args, logger: logger, uiWriter: uiw, ctx: ctx, cancelFn: cancel}

	loader := trackerchip.Loader{}
	pl := player.New(loader, &d.clock)

	cfg := engine.DefaultConfig()
	cfg.MinFreq = args.MinFreq
	cfg.MaxFreq = args.MaxFreq
	if args.FFTDiv > 0 {
		cfg.FFTDivider = int(args.FFTDiv)
	}

	d.eng = engine.New(cfg, pl, &d.clock)

	idx, err := indexer.NewRemote(loader)
	if err != nil {
		logger.Printf("indexer: %v", err)
	}

	d.coord = coordinator.New(d.eng, &d.clock, idx)

	list := &song.Array{}
	for _, path := range args.Songs {
		list.Songs = append(list.Songs, song.New(path))
	}
	d.coord.SetPlayList(list)

	r, err := remote.Start()
	if err != nil {
		logger.Printf("remote: %v", err)
		r = remote.Noop()
	}
	d.remote = r

	return d
}

// Run starts audio, the remote surface, and the input listeners, then
// renders a single status line until told to quit.
func (d *driver) Run() error {
	if err := d.eng.StartAudio(); err != nil {
		return err
	}
	defer d.eng.Close()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.eng.Run(d.ctx)
	}()

	d.coord.Next()

	d.setupSignalHandlers()
	d.setupKeyboardHandlers()
	d.setupRemoteRelay()

	fmt.Fprint(d.uiWriter, hideCursor)
	defer fmt.Fprint(d.uiWriter, showCursor)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return nil
		case <-ticker.C:
			for range d.coord.Update() {
			}
			d.renderStatus()
		}
	}
}

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

func (d *driver) renderStatus() {
	title := d.coord.Meta(value.KeyTitle).Text
	composer := d.coord.Meta(value.KeyComposer).Text
	line := fmt.Sprintf("%s %s  %s %02d:%02d", cyan(title), yellow(composer),
		cyan("t"), d.coord.ClockMsec()/1000/60, (d.coord.ClockMsec()/1000)%60)
	if line == d.lastLine {
		return
	}
	d.lastLine = line
	fmt.Fprintf(d.uiWriter, "\r%s%s", line, escape+"K")
}

func (d *driver) setupSignalHandlers() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case <-d.ctx.Done():
		case <-sigCh:
			d.Stop()
		}
	}()
}

func (d *driver) setupKeyboardHandlers() {
	if d.args.NoTerm {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		keyboard.Listen(func(key keys.Key) (bool, error) {
			switch key.Code {
			case keys.CtrlC, keys.Escape:
				d.Stop()
				return true, nil
			case keys.Space:
				d.coord.SendCmd(func(p *player.Player) error { return p.PlayPause() })
			case keys.Right:
				d.coord.Next()
			case keys.Left:
				d.coord.Prev()
			case keys.RuneKey:
				if len(key.Runes) > 0 && key.Runes[0] == 'q' {
					d.Stop()
					return true, nil
				}
			}
			return false, nil
		})
	}()
}

func (d *driver) setupRemoteRelay() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				return
			case ev, ok := <-d.remote.Events():
				if !ok {
					return
				}
				d.handleRemoteEvent(ev)
			}
		}
	}()
}

func (d *driver) handleRemoteEvent(ev remote.Event) {
	switch ev {
	case remote.EventNext:
		d.coord.Next()
	case remote.EventPrevious:
		d.coord.Prev()
	case remote.EventPlayPause:
		d.coord.SendCmd(func(p *player.Player) error { return p.PlayPause() })
	case remote.EventPlay, remote.EventPause:
		d.coord.SendCmd(func(p *player.Player) error { return p.PlayPause() })
	case remote.EventStop:
		d.Stop()
	}
}

func (d *driver) Stop() {
	d.stopOnce.Do(func() {
		d.coord.SendCmd(func(p *player.Player) error { return p.Quit() })
		d.remote.Close()
		d.cancelFn()
	})
}
