// Command kbdwatch captures key presses from the first USB HID keyboard it
// can claim and prints each decoded report. With -list it only enumerates
// what each backend can see.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/seagrayinc/hidkbd/pkg/hidkbd"
)

func main() {
	var (
		timeout = flag.Duration("timeout", hidkbd.DefaultReadTimeout, "per-read poll timeout")
		list    = flag.Bool("list", false, "list devices seen by each backend and exit")
		asJSON  = flag.Bool("json", false, "print events as JSON, one object per line")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if *list {
		listDevices()
		return
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	c := hidkbd.New(hidkbd.Options{
		ReadTimeout: *timeout,
		Logger:      &log,
	})
	if err := c.Open(); err != nil {
		log.Error().Err(err).Msg("no usable keyboard")
		if errors.Is(err, hidkbd.ErrNoKeyboard) {
			fmt.Fprintln(os.Stderr, "Make sure a USB keyboard is connected; on Linux, access to hidraw/usb nodes may require elevated privileges or a udev rule.")
		} else {
			fmt.Fprintln(os.Stderr, "The device may already be claimed by another process.")
		}
		os.Exit(1)
	}

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	fmt.Println("Press keys on the captured keyboard; Ctrl+C to exit.")
	for ev := range c.Events() {
		if *asJSON {
			if err := json.NewEncoder(os.Stdout).Encode(ev); err != nil {
				log.Warn().Err(err).Msg("encoding event failed")
			}
			continue
		}
		fmt.Printf("Raw Data: %s\n", strings.Join(ev.RawHex, " "))
		if len(ev.Modifiers) > 0 {
			fmt.Printf("Modifiers: %s\n", strings.Join(ev.Modifiers, ", "))
		}
		if len(ev.Keys) > 0 {
			fmt.Printf("Keys: %s\n", strings.Join(ev.Keys, ", "))
		}
		fmt.Println(strings.Repeat("-", 40))
	}

	if err := <-errc; err != nil {
		log.Error().Err(err).Msg("capture stopped")
		os.Exit(1)
	}
}

func listDevices() {
	for _, bd := range hidkbd.ListDevices() {
		fmt.Printf("== backend %s ==\n", bd.Backend)
		if bd.Err != nil {
			fmt.Printf("  unavailable: %v\n", bd.Err)
			continue
		}
		if len(bd.Devices) == 0 {
			fmt.Println("  no devices")
			continue
		}
		for _, d := range bd.Devices {
			marker := " "
			if hidkbd.IsKeyboard(d) {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, d)
		}
	}
	fmt.Println("* = classified as a keyboard candidate")
}
