// Command oldplay-render decodes a single tracker song straight to a WAV
// file, with no audio device involved. Grounded on the teacher's
// cmd/modwav/main.go (flag parsing, SIGINT handling, the
// generate-then-write loop), adapted to drive a chipplayer.ChipPlayer
// instead of a concrete *modplayer.Player.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oldplay/oldplay/internal/trackerchip"
	"github.com/oldplay/oldplay/wav"
)

const outputHz = 44100

func main() {
	log.SetFlags(0)
	log.SetPrefix("oldplay-render: ")

	wavOut := flag.String("wav", "", "output WAV file path")
	seconds := flag.Float64("seek", 0, "seek offset in seconds before rendering")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("missing song filename")
	}
	if *wavOut == "" {
		log.Fatal("missing -wav output path")
	}

	loader := trackerchip.Loader{}
	path := flag.Arg(0)
	if !loader.CanHandle(path) {
		log.Fatalf("unsupported format: %s", path)
	}

	chip, err := loader.LoadSong(path)
	if err != nil {
		log.Fatal(err)
	}
	if *seconds > 0 {
		if err := chip.Seek(0, *seconds); err != nil {
			log.Fatal(err)
		}
	}

	info, _ := loader.IdentifySong(path)

	wavF, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz, info)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)

	audioOut := make([]int16, 4096)
	playing := true
	go func() {
		<-sigCh
		playing = false
	}()

	for playing {
		n := chip.GetSamples(audioOut)
		if n == 0 {
			break
		}
		if err := wavW.WriteFrame(audioOut[:n*2]); err != nil {
			log.Fatal(err)
		}
	}
}
