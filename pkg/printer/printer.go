package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"
)

// Printer sends raw ESC/POS bytes to a receipt printer.
type Printer interface {
	Print(ctx context.Context, data []byte) error
	// IsConnected reports whether the device is reachable right now.
	IsConnected(ctx context.Context) bool
}

// --- USB printer: writes to a device file such as /dev/usb/lp0 ---

type usbPrinter struct {
	path string
}

func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(_ context.Context, data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) IsConnected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network printer: raw TCP, usually port 9100 ---

type networkPrinter struct {
	address string
	dialer  net.Dialer
}

func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{address: address, dialer: net.Dialer{Timeout: 5 * time.Second}}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Null printer: used when no hardware is configured ---

type nullPrinter struct{}

func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(context.Context, []byte) error { return ErrNotConfigured }

func (nullPrinter) IsConnected(context.Context) bool { return false }

// ErrNotConfigured is returned when printing with no printer configured.
var ErrNotConfigured = fmt.Errorf("printer: no printer configured")

// New builds the printer for kind "usb" (address is a device path),
// "network" (address is host:port) or "none".
func New(kind, address string) (Printer, error) {
	switch kind {
	case "usb":
		if address == "" {
			return nil, fmt.Errorf("printer: device path is required for usb printers")
		}
		return NewUSBPrinter(address), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for network printers")
		}
		return NewNetworkPrinter(address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", kind)
	}
}
