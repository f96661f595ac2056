// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sstallion/go-hid"
	"golang.org/x/term"

	"github.com/railscope/railscope/pkg/psulink"
)

// Connection provides a common interface for exchanging HID reports with a
// local device or a WebSocket bridge
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

var (
	hidInitOnce sync.Once
	hidInitErr  error
)

// initHID initializes the hidapi library once per process
func initHID() error {
	hidInitOnce.Do(func() {
		hidInitErr = hid.Init()
	})
	return hidInitErr
}

// SupplyInfo describes a power supply found during HID enumeration
type SupplyInfo struct {
	Path    string
	Vendor  uint16
	Product uint16
	Serial  string
	Model   string
}

// EnumerateSupplies scans the HID bus and partitions Corsair devices into
// supported supplies and same-vendor devices this tool does not speak to.
func EnumerateSupplies() (supported, other []SupplyInfo, err error) {
	if err := initHID(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize HID: %v", err)
	}

	err = hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		if info.VendorID != psulink.VendorID {
			return nil
		}
		entry := SupplyInfo{
			Path:    info.Path,
			Vendor:  info.VendorID,
			Product: info.ProductID,
			Serial:  info.SerialNbr,
			Model:   psulink.ProductName(info.ProductID),
		}
		if psulink.Supported(info.VendorID, info.ProductID) {
			supported = append(supported, entry)
		} else {
			other = append(other, entry)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("HID enumeration failed: %v", err)
	}

	return supported, other, nil
}

// HIDConnection wraps an open HID device
type HIDConnection struct {
	dev  *hid.Device
	info hid.DeviceInfo
}

func (h *HIDConnection) Read(p []byte) (int, error) {
	return h.dev.Read(p)
}

func (h *HIDConnection) Write(p []byte) (int, error) {
	return h.dev.Write(p)
}

func (h *HIDConnection) Close() error {
	return h.dev.Close()
}

// Info returns the enumeration metadata of the open device
func (h *HIDConnection) Info() hid.DeviceInfo {
	return h.info
}

// OpenHIDConnection opens a HID device and verifies it is a supported power
// supply before any report traffic is exchanged.
func OpenHIDConnection(path string) (*HIDConnection, error) {
	if err := initHID(); err != nil {
		return nil, fmt.Errorf("failed to initialize HID: %v", err)
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HID device %s: %v", path, err)
	}

	info, err := dev.GetDeviceInfo()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to query HID device %s: %v", path, err)
	}

	if !psulink.Supported(info.VendorID, info.ProductID) {
		dev.Close()
		return nil, &psulink.NotEligibleError{Vendor: info.VendorID, Product: info.ProductID}
	}

	return &HIDConnection{dev: dev, info: *info}, nil
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketConnection wraps a WebSocket bridge connection for byte-level
// reading. The bridge forwards each binary message to and from the supply's
// HID endpoint unchanged.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool // Track if connection has failed/closed
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Return immediately if connection is known to be closed
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// If we have buffered data, return it first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	// Read next message from WebSocket (non-recursive loop to avoid stack overflow)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// Mark connection as closed to prevent further read attempts
			w.closed = true
			return 0, err
		}

		// HID reports travel as binary messages only
		if messageType != websocket.BinaryMessage {
			// Skip non-binary messages and continue loop
			continue
		}

		// Buffer the message and return what fits
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	// Validate scheme
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	// Create dialer with timeout
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// Configure TLS for wss://
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// Build HTTP headers with Basic auth
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	// Connect
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("RAILSCOPE_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenConnection opens either a HID or WebSocket connection based on flags.
// Without an explicit target it scans for exactly one supported supply.
func OpenConnection() (Connection, string, error) {
	if wsURL != "" {
		// WebSocket mode
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if devicePath != "" {
		// Explicit HID device
		conn, err := OpenHIDConnection(devicePath)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("HID: %s (%s)", devicePath, psulink.ProductName(conn.info.ProductID)), nil
	}

	// Auto-detect: exactly one supported supply on the bus.
	supplies, _, err := EnumerateSupplies()
	if err != nil {
		return nil, "", err
	}
	if len(supplies) == 0 {
		return nil, "", fmt.Errorf("no supported power supply found (run 'railscope devices' to check)")
	}
	if len(supplies) > 1 {
		return nil, "", fmt.Errorf("%d supported power supplies found, pick one with --device (run 'railscope devices' to list them)", len(supplies))
	}

	conn, err := OpenHIDConnection(supplies[0].Path)
	if err != nil {
		return nil, "", err
	}

	return conn, fmt.Sprintf("HID: %s (%s)", supplies[0].Path, supplies[0].Model), nil
}
