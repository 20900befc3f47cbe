package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/romloader"
	"go.uber.org/zap"
)

// Test ROMs in the blargg style report through PRG RAM: $6000 holds the
// status, $6001-$6003 the signature DE B0 61 and $6004 a NUL-terminated message.
const (
	statusAddr   = 0x6000
	messageAddr  = 0x6004
	statusBusy   = 0x80
	statusReset  = 0x81
	maxMessageSz = 0x1000
)

var signature = []byte{0xDE, 0xB0, 0x61}

func hasSignature(m *emu.Machine) bool {
	for i, b := range signature {
		if m.Peek(statusAddr+1+uint16(i)) != b {
			return false
		}
	}
	return true
}

func message(m *emu.Machine) string {
	var b bytes.Buffer
	for addr := uint16(messageAddr); addr < messageAddr+maxMessageSz; addr++ {
		c := m.Peek(addr)
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}

// ring keeps the most recent trace lines for -traceOnFail.
type ring struct {
	lines []string
	next  int
	full  bool
}

func (r *ring) add(s string) {
	if len(r.lines) == 0 {
		return
	}
	r.lines[r.next] = s
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) dump() []string {
	if !r.full {
		return r.lines[:r.next]
	}
	return append(append([]string(nil), r.lines[r.next:]...), r.lines[:r.next]...)
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.nes or archive)")
	steps := flag.Int("steps", 50_000_000, "max CPU instructions to run")
	startPC := flag.Int("pc", -1, "initial PC (e.g. 0xC000 for nestest automation); -1 uses the reset vector")
	trace := flag.Bool("trace", false, "print one nestest-style line per instruction")
	auto := flag.Bool("auto", true, "watch $6000 for a blargg-style result and exit 0 on pass, 1 on failure")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "when -auto detects failure, print a recent trace window (slows down)")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to include in 'traceOnFail' dump")
	verbose := flag.Bool("v", false, "development logging")
	flag.Parse()

	log := zap.Must(zap.NewProduction())
	if *verbose {
		log = zap.Must(zap.NewDevelopment())
	}
	defer log.Sync()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	img, err := romloader.Load(*romPath)
	if err != nil {
		log.Fatal("read rom", zap.Error(err))
	}
	m, err := emu.FromROM(img.Data, emu.Config{})
	if err != nil {
		log.Fatal("load rom", zap.Error(err))
	}
	c := m.CPU()
	if *startPC >= 0 {
		c.SetPC(uint16(*startPC))
	}

	var recent ring
	if *traceOnFail {
		recent.lines = make([]string, max(*traceWindow, 1))
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	done := func(i int, code int) {
		fmt.Printf("\nDone: steps=%d cycles=%d elapsed=%s\n", i, c.Cycles, time.Since(start).Truncate(time.Millisecond))
		os.Exit(code)
	}

	running := false
	resetAt := time.Time{}
	for i := 0; i < *steps; i++ {
		if *trace || *traceOnFail {
			line := c.Trace()
			if *trace {
				fmt.Println(line)
			}
			recent.add(line)
		}
		m.Step()

		if *auto && hasSignature(m) {
			switch status := m.Peek(statusAddr); {
			case status == statusBusy:
				running = true
			case status == statusReset:
				// the ROM asks for a reset after at least 100 ms
				if resetAt.IsZero() {
					resetAt = time.Now().Add(100 * time.Millisecond)
				} else if time.Now().After(resetAt) {
					resetAt = time.Time{}
					m.Reset()
				}
			case running && status == 0:
				fmt.Printf("%s\n\nDetected PASS.\n", message(m))
				done(i+1, 0)
			case running:
				fmt.Printf("%s\n\nDetected failure code %d.\n", message(m), status)
				if *traceOnFail {
					lines := recent.dump()
					fmt.Printf("\n--- recent trace (last %d instructions) ---\n", len(lines))
					for _, l := range lines {
						fmt.Println(l)
					}
					fmt.Printf("--- end trace ---\n")
				}
				done(i+1, 1)
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i+1, 2)
		}
	}
	// nestest leaves its result codes in $02/$03
	fmt.Printf("\nresult $02=%02X $03=%02X\n", m.Peek(0x02), m.Peek(0x03))
	fmt.Printf("Done: steps=%d cycles=%d elapsed=%s\n", *steps, c.Cycles, time.Since(start).Truncate(time.Millisecond))
}
