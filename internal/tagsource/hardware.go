package tagsource

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/karalabe/hid"
	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
)

// Hardware reconnect backoff (spec §4.1): starts at 250ms, doubles, caps
// at 5s. Distinct from the Store's fixed 50/100/200/400ms schedule —
// same exponential shape, different constants, no code sharing.
const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 5 * time.Second
	pollInterval   = 50 * time.Millisecond // ≤ 100ms per spec §4.1
)

// HardwareTagSource polls a USB-HID RFID reader. Opened via
// github.com/karalabe/hid, following the connection-manager/read-loop
// shape of a USB-HID barcode scanner in the pack: enumerate, open,
// poll-with-timeout, reconnect-with-backoff on read failure.
type HardwareTagSource struct {
	vendorID  uint16
	productID uint16
	log       zerolog.Logger

	mu        sync.Mutex
	device    *hid.Device
	connected int32 // atomic

	ledQueue chan Feedback

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHardware constructs a HardwareTagSource for the given vendor/product
// ID. Open() should be called first to confirm a device is present; the
// factory pattern (fall back to MockTagSource on failure) lives in
// internal/di.
func NewHardware(vendorID, productID uint16, log zerolog.Logger) *HardwareTagSource {
	return &HardwareTagSource{
		vendorID:  vendorID,
		productID: productID,
		log:       log.With().Str("component", "hardware_tag_source").Logger(),
		ledQueue:  make(chan Feedback, 16),
	}
}

// Open attempts to enumerate and open the target device once, without
// starting the polling worker. Used by the DI factory to decide whether to
// fall back to MockTagSource (spec §4.1: "on failure, the factory returns
// a MockTagSource instead").
func (h *HardwareTagSource) Open() error {
	device, err := h.findAndOpenDevice()
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.device = device
	h.mu.Unlock()
	atomic.StoreInt32(&h.connected, 1)
	return nil
}

func (h *HardwareTagSource) findAndOpenDevice() (*hid.Device, error) {
	devices := hid.Enumerate(h.vendorID, h.productID)
	for _, info := range devices {
		device, err := info.Open()
		if err != nil {
			continue
		}
		return device, nil
	}
	return nil, fmt.Errorf("rfid reader %04x:%04x not found", h.vendorID, h.productID)
}

// Start begins the polling worker and the LED feedback consumer.
func (h *HardwareTagSource) Start(ctx context.Context, onTag func(tagID string)) error {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(2)
	go h.connectionManager(onTag)
	go h.ledWorker()
	return nil
}

// Stop signals both workers to exit and waits for them to finish.
func (h *HardwareTagSource) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()

	h.mu.Lock()
	device := h.device
	h.device = nil
	h.mu.Unlock()
	atomic.StoreInt32(&h.connected, 0)
	if device != nil {
		_ = device.Close()
	}
}

func (h *HardwareTagSource) IndicateSuccess() {
	select {
	case h.ledQueue <- FeedbackSuccess:
	default:
	}
}

func (h *HardwareTagSource) IndicateError() {
	select {
	case h.ledQueue <- FeedbackError:
	default:
	}
}

func (h *HardwareTagSource) IsConnected() bool {
	return atomic.LoadInt32(&h.connected) == 1
}

func (h *HardwareTagSource) connectionManager(onTag func(string)) {
	defer h.wg.Done()
	backoff := initialBackoff

	for {
		select {
		case <-h.ctx.Done():
			return
		default:
		}

		h.mu.Lock()
		device := h.device
		h.mu.Unlock()

		if device == nil {
			d, err := h.findAndOpenDevice()
			if err != nil {
				h.log.Warn().Err(err).Dur("retry_in", backoff).Msg("rfid reader not found, retrying")
				select {
				case <-h.ctx.Done():
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			h.mu.Lock()
			h.device = d
			h.mu.Unlock()
			atomic.StoreInt32(&h.connected, 1)
			backoff = initialBackoff
			h.log.Info().Msg("rfid reader connected")
		}

		h.runReadLoop(onTag)

		atomic.StoreInt32(&h.connected, 0)
		h.mu.Lock()
		h.device = nil
		h.mu.Unlock()
	}
}

// runReadLoop polls the device until a read error (disconnect) or
// shutdown, applying the consecutive-repeat debounce and uppercase-hex
// normalization described in spec §4.1.
func (h *HardwareTagSource) runReadLoop(onTag func(string)) {
	buffer := make([]byte, 64)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastTag string
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			device := h.device
			h.mu.Unlock()
			if device == nil {
				return
			}

			n, err := device.Read(buffer)
			if err != nil {
				h.log.Debug().Err(err).Msg("rfid reader read failed, reconnecting")
				return
			}
			if n == 0 {
				lastTag = "" // null read clears the repeat-suppression window
				continue
			}

			tag := domain.NormalizeTag(stripNullPadding(buffer[:n]))
			if tag == "" {
				continue
			}
			if tag == lastTag {
				continue // suppress immediate repeat
			}
			lastTag = tag
			onTag(tag)
		}
	}
}

func (h *HardwareTagSource) ledWorker() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ctx.Done():
			return
		case fb := <-h.ledQueue:
			// Best-effort: real GPIO/LED driver wiring is hardware
			// specific and out of scope for the core engine; logging
			// stands in for the physical indicator here.
			switch fb {
			case FeedbackSuccess:
				h.log.Debug().Msg("led: success (green flash ~500ms)")
			case FeedbackError:
				h.log.Debug().Msg("led: error (red blink x3)")
			}
		}
	}
}

// stripNullPadding trims the trailing zero bytes fixed-size HID reports
// pad with, leaving the ASCII tag-id the reader emits (most USB-HID RFID
// readers emulate a keyboard and transmit the tag as ASCII hex digits).
func stripNullPadding(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}
