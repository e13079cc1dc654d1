// Command mixdeck hosts the mixer engine on a portaudio duplex stream,
// feeds it events from a MIDI control surface and logs the engine's
// outbound messages.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/mixdeck/mixdeck/pkg/config"
	"github.com/mixdeck/mixdeck/pkg/midi"
	"github.com/mixdeck/mixdeck/pkg/mixer"
)

var log = logrus.New()

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: ./"+config.FileName+" if present)")
		midiPort   = flag.String("midi", "", "substring of the MIDI input port to listen on")
		sampleRate = flag.Float64("rate", 48000, "sample rate in Hz")
		blockSize  = flag.Int("block", 256, "frames per block")
		spectral   = flag.Bool("spectral", false, "route channels through the spectral engine")
		spectra    = flag.Bool("spectra", false, "publish live spectra (implies -spectral)")
		listMidi   = flag.Bool("list-midi", false, "list MIDI input ports and exit")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *spectra {
		*spectral = true
	}

	if err := run(*configPath, *midiPort, *sampleRate, *blockSize, *spectral, *spectra, *listMidi); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, midiPort string, sampleRate float64, blockSize int, spectral, spectra, listMidi bool) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("midi driver: %w", err)
	}
	defer drv.Close()

	if listMidi {
		ins, err := drv.Ins()
		if err != nil {
			return err
		}
		for _, in := range ins {
			fmt.Println(in.String())
		}
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i, ch := range cfg.Channels {
		log.WithFields(logrus.Fields{"channel": i, "name": ch.Name}).Info("channel configured")
	}

	ui := make(chan mixer.UiMsg, 256)
	control := make(chan mixer.AudioMsg, 64)
	events := midi.NewRing(256)

	engine, err := mixer.NewEngine(mixer.Params{
		Config:         cfg,
		SampleRate:     sampleRate,
		BlockSize:      blockSize,
		UI:             ui,
		ControlIn:      control,
		Events:         events,
		Spectral:       spectral,
		PublishSpectra: spectra,
	})
	if err != nil {
		return err
	}
	if lat := engine.Latency(); lat > 0 {
		log.WithField("samples", lat).Info("processing latency")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	// The callback must not touch anything blocking; after the engine
	// requests quit it emits silence until the stream is torn down.
	var quit atomic.Bool
	done := make(chan struct{})
	n := engine.Channels()
	callback := func(in, out [][]float32) {
		if quit.Load() {
			for _, ch := range out {
				for i := range ch {
					ch[i] = 0
				}
			}
			return
		}
		if engine.Process(in, out) == mixer.Quit {
			if quit.CompareAndSwap(false, true) {
				close(done)
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(n, n, sampleRate, blockSize, callback)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	stopMidi, err := listenMidi(drv, midiPort, events)
	if err != nil {
		return err
	}
	defer stopMidi()

	var uiDrain, spectrumConsumers sync.WaitGroup
	uiDrain.Add(1)
	go func() {
		defer uiDrain.Done()
		drainUI(ui)
	}()
	startSpectrumConsumers(engine, ui, &spectrumConsumers)

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	log.WithFields(logrus.Fields{
		"channels": n,
		"rate":     sampleRate,
		"block":    blockSize,
	}).Info("running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("shutting down")
	case <-done:
		log.Info("engine requested shutdown")
	}

	if err := stream.Stop(); err != nil {
		log.WithError(err).Warn("stream stop")
	}
	// Spectrum consumers must be gone before the UI queue closes, they
	// send into it.
	engine.Shutdown()
	spectrumConsumers.Wait()
	close(ui)
	uiDrain.Wait()

	if dropped := engine.DroppedUIMsgs(); dropped > 0 {
		log.WithField("count", dropped).Debug("dropped UI messages")
	}
	return nil
}

// listenMidi opens the first input port matching the given substring (or
// the first port at all when the substring is empty) and decodes its
// stream into the engine's event ring. Running without a surface is fine.
func listenMidi(drv *rtmididrv.Driver, portName string, events *midi.Ring) (func(), error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	var port drivers.In
	for _, in := range ins {
		if portName == "" || strings.Contains(in.String(), portName) {
			port = in
			break
		}
	}
	if port == nil {
		if portName != "" {
			return nil, fmt.Errorf("midi input %q not found", portName)
		}
		log.Info("no MIDI input available, running without a control surface")
		return func() {}, nil
	}
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("open midi input: %w", err)
	}

	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, _ int32) {
		ev, ok := midi.Decode(msg)
		if !ok {
			return
		}
		if !events.TryPush(ev) {
			// Ring full, engine will see the surface catch up later.
			return
		}
		log.WithFields(logrus.Fields{
			"kind":   ev.Kind,
			"number": ev.Number,
			"value":  ev.Value,
		}).Debug("surface event")
	}, gomidi.HandleError(func(err error) {
		log.WithError(err).Warn("midi listener")
	}))
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("midi listen: %w", err)
	}
	log.WithField("port", port.String()).Info("listening on MIDI input")
	return func() {
		stop()
		port.Close()
	}, nil
}

// drainUI consumes the engine's outbound queue and logs it. A graphical
// frontend would hang off this same channel.
func drainUI(ui <-chan mixer.UiMsg) {
	for msg := range ui {
		switch msg.Kind {
		case mixer.UiLevels:
			log.WithFields(logrus.Fields{
				"channel": msg.Channel,
				"gain":    msg.Gain,
			}).Info("fader")
		case mixer.UiMetering:
			log.WithFields(logrus.Fields{
				"channel": msg.Channel,
				"max_in":  msg.Metering.MaxIn,
				"rms_in":  msg.Metering.RMSIn,
				"max_out": msg.Metering.MaxOut,
				"rms_out": msg.Metering.RMSOut,
			}).Debug("metering")
		case mixer.UiToggleMetering:
			log.WithField("channel", msg.Channel).Debug("metering toggled")
		case mixer.UiLowPassSpectrum:
			log.WithField("bins", len(msg.Spectrum)).Info("filter spectrum")
		case mixer.UiAudioInSpectrum, mixer.UiAudioOutSpectrum:
			log.WithFields(logrus.Fields{
				"channel": msg.Channel,
				"bins":    len(msg.Spectrum),
			}).Debug("spectrum")
		}
	}
}

// startSpectrumConsumers bridges each channel's monitor slots onto the UI
// queue. The producer side never blocks, so these consumers pace
// themselves and simply miss frames when they fall behind.
func startSpectrumConsumers(engine *mixer.Engine, ui chan<- mixer.UiMsg, wg *sync.WaitGroup) {
	for ch := 0; ch < engine.Channels(); ch++ {
		inSlot, outSlot := engine.Spectra(ch)
		if inSlot == nil {
			return
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			inSlot.OnChanged(func(spectrum []float32) {
				// The slot hands out its internal buffer, which the
				// producer keeps overwriting; messages own their data.
				s := append([]float32(nil), spectrum...)
				trySend(ui, mixer.UiMsg{Kind: mixer.UiAudioInSpectrum, Channel: ch, Spectrum: s})
			})
		}()
		go func() {
			defer wg.Done()
			outSlot.OnChanged(func(spectrum []float32) {
				s := append([]float32(nil), spectrum...)
				trySend(ui, mixer.UiMsg{Kind: mixer.UiAudioOutSpectrum, Channel: ch, Spectrum: s})
			})
		}()
	}
}

func trySend(ui chan<- mixer.UiMsg, msg mixer.UiMsg) {
	select {
	case ui <- msg:
	default:
	}
}
