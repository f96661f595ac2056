// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

// Package record reads and writes telemetry recordings: a CBOR stream of
// one header entry followed by one entry per snapshot. Entries use integer
// map keys to keep the stream compact; the layout is versioned through the
// header so later readers can reject streams they do not understand.
package record

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/railscope/railscope/pkg/psulink"
)

// Version identifies the stream layout written by this package.
const Version = 1

// Header is the first entry of every recording.
type Header struct {
	Version int    `cbor:"1,keyasint"`
	Device  string `cbor:"2,keyasint"`
	Started int64  `cbor:"3,keyasint"` // unix seconds
}

// RailSample holds one rail's electrical values.
type RailSample struct {
	Volts float64 `cbor:"1,keyasint"`
	Amps  float64 `cbor:"2,keyasint"`
	Watts float64 `cbor:"3,keyasint"`
}

// Sample is one recorded snapshot. Uptime counters are kept as the raw
// second counts the device reports.
type Sample struct {
	Taken       int64        `cbor:"1,keyasint"` // unix seconds
	Name        string       `cbor:"2,keyasint"`
	Vendor      string       `cbor:"3,keyasint"`
	Product     string       `cbor:"4,keyasint"`
	PoweredSecs uint32       `cbor:"5,keyasint"`
	UptimeSecs  uint32       `cbor:"6,keyasint"`
	TempA       float64      `cbor:"7,keyasint"`
	TempB       float64      `cbor:"8,keyasint"`
	FanRPM      float64      `cbor:"9,keyasint"`
	SupplyVolts float64      `cbor:"10,keyasint"`
	TotalWatts  float64      `cbor:"11,keyasint"`
	Rails       []RailSample `cbor:"12,keyasint"`
}

// NewSample converts a snapshot into its stream form.
func NewSample(snap *psulink.Snapshot) Sample {
	s := Sample{
		Taken:       snap.Taken.Unix(),
		Name:        snap.Name,
		Vendor:      snap.Vendor,
		Product:     snap.Product,
		PoweredSecs: uint32(snap.Powered / time.Second),
		UptimeSecs:  uint32(snap.Uptime / time.Second),
		TempA:       snap.TempA,
		TempB:       snap.TempB,
		FanRPM:      snap.FanRPM,
		SupplyVolts: snap.SupplyVolts,
		TotalWatts:  snap.TotalWatts,
		Rails:       make([]RailSample, psulink.RailCount),
	}
	for i, r := range snap.Rails {
		s.Rails[i] = RailSample{Volts: r.Volts, Amps: r.Amps, Watts: r.Watts}
	}
	return s
}

// Snapshot converts a sample back for display. Rails beyond the fixed rail
// count are dropped; missing ones read as zero.
func (s *Sample) Snapshot() *psulink.Snapshot {
	snap := &psulink.Snapshot{
		Name:        s.Name,
		Vendor:      s.Vendor,
		Product:     s.Product,
		Powered:     time.Duration(s.PoweredSecs) * time.Second,
		Uptime:      time.Duration(s.UptimeSecs) * time.Second,
		TempA:       s.TempA,
		TempB:       s.TempB,
		FanRPM:      s.FanRPM,
		SupplyVolts: s.SupplyVolts,
		TotalWatts:  s.TotalWatts,
		Taken:       time.Unix(s.Taken, 0),
	}
	for i, r := range s.Rails {
		if i >= psulink.RailCount {
			break
		}
		snap.Rails[i] = psulink.Rail{Volts: r.Volts, Amps: r.Amps, Watts: r.Watts}
	}
	return snap
}

// Writer appends a header and samples to an open stream.
type Writer struct {
	enc   *cbor.Encoder
	c     io.Closer
	count int
}

// NewWriter starts a recording on w by writing the header entry.
func NewWriter(w io.Writer, device string) (*Writer, error) {
	enc := cbor.NewEncoder(w)
	hdr := Header{Version: Version, Device: device, Started: time.Now().Unix()}
	if err := enc.Encode(hdr); err != nil {
		return nil, fmt.Errorf("failed to write recording header: %w", err)
	}
	return &Writer{enc: enc}, nil
}

// Create opens path for writing and starts a recording in it.
func Create(path, device string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	w, err := NewWriter(f, device)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.c = f
	return w, nil
}

// Append writes one snapshot entry.
func (w *Writer) Append(snap *psulink.Snapshot) error {
	s := NewSample(snap)
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("failed to append sample: %w", err)
	}
	w.count++
	return nil
}

// Count reports how many samples have been appended.
func (w *Writer) Count() int {
	return w.count
}

// Close closes the underlying file, if the writer owns one.
func (w *Writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

// Reader iterates a recording.
type Reader struct {
	dec    *cbor.Decoder
	c      io.Closer
	header Header
}

// NewReader reads the header entry from r and prepares sample iteration.
func NewReader(r io.Reader) (*Reader, error) {
	dec := cbor.NewDecoder(r)
	var hdr Header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("failed to read recording header: %w", err)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("unsupported recording version %d (want %d)", hdr.Version, Version)
	}
	return &Reader{dec: dec, header: hdr}, nil
}

// Open opens a recording file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.c = f
	return r, nil
}

// Header returns the stream header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next sample, or io.EOF at the end of the stream.
func (r *Reader) Next() (*Sample, error) {
	var s Sample
	if err := r.dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode sample: %w", err)
	}
	return &s, nil
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}
