package printer

import (
	"context"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Printer sends raw ESC/POS bytes to a receipt printer
type Printer interface {
	Print(ctx context.Context, data []byte) error
	// Ready reports whether the device can currently accept a job.
	Ready(ctx context.Context) bool
	// Kind names the transport: usb, network, file or none.
	Kind() string
}

// Config selects and addresses a printer
type Config struct {
	Type      string // usb, network, file or none
	USBPath   string
	Address   string
	FilePath  string
	CharWidth int
}

// New creates the printer named by cfg.Type
func New(cfg Config) (Printer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "usb":
		if cfg.USBPath == "" {
			return nil, errors.New("printer: usb path is required for usb printers")
		}
		return &devicePrinter{path: cfg.USBPath, kind: "usb"}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, errors.New("printer: file path is required for file printers")
		}
		return &devicePrinter{path: cfg.FilePath, kind: "file", create: true}, nil
	case "network":
		if cfg.Address == "" {
			return nil, errors.New("printer: address is required for network printers")
		}
		return &networkPrinter{address: cfg.Address, dialer: net.Dialer{Timeout: 5 * time.Second}}, nil
	case "none", "":
		return nullPrinter{}, nil
	default:
		return nil, errors.Errorf("printer: unknown type %q (use usb, network, file or none)", cfg.Type)
	}
}

// devicePrinter writes each job to a device node such as /dev/usb/lp0, or
// appends it to a spool file.
type devicePrinter struct {
	path   string
	kind   string
	create bool
}

func (p *devicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	flags := os.O_WRONLY
	if p.create {
		flags |= os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(p.path, flags, 0o644)
	if err != nil {
		return errors.Wrapf(err, "printer: open %s", p.path)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "printer: write %s", p.path)
	}
	return nil
}

func (p *devicePrinter) Ready(context.Context) bool {
	if p.create {
		return true
	}
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *devicePrinter) Kind() string { return p.kind }

// networkPrinter speaks raw TCP, usually on port 9100
type networkPrinter struct {
	address string
	dialer  net.Dialer
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return errors.Wrapf(err, "printer: connect %s", p.address)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return errors.Wrapf(err, "printer: write %s", p.address)
	}
	return nil
}

func (p *networkPrinter) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Kind() string { return "network" }

// nullPrinter discards jobs. It is used when no printer is configured.
type nullPrinter struct{}

func (nullPrinter) Print(context.Context, []byte) error { return nil }
func (nullPrinter) Ready(context.Context) bool          { return false }
func (nullPrinter) Kind() string                        { return "none" }
