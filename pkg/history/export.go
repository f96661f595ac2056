// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ExportCSV exports archived samples to CSV format, one row per sample
// with the three rails flattened into columns
func (db *DB) ExportCSV(w io.Writer, filter SampleFilter) error {
	samples, err := db.ListSamples(filter)
	if err != nil {
		return fmt.Errorf("failed to list samples: %w", err)
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	headers := []string{
		"ID", "Device", "Taken", "Name", "Vendor", "Product",
		"Powered (s)", "Uptime (s)", "Temp1 (C)", "Temp2 (C)", "Fan (rpm)",
		"Supply (V)", "Total (W)",
		"Rail0 (V)", "Rail0 (A)", "Rail0 (W)",
		"Rail1 (V)", "Rail1 (A)", "Rail1 (W)",
		"Rail2 (V)", "Rail2 (A)", "Rail2 (W)",
	}
	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, s := range samples {
		rails, err := db.GetRails(s.ID)
		if err != nil {
			return err
		}

		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.Device,
			s.Taken.Format("2006-01-02 15:04:05"),
			s.Name,
			s.Vendor,
			s.Product,
			strconv.FormatUint(uint64(s.PoweredSecs), 10),
			strconv.FormatUint(uint64(s.UptimeSecs), 10),
			fmt.Sprintf("%.3f", s.TempA),
			fmt.Sprintf("%.3f", s.TempB),
			fmt.Sprintf("%.0f", s.FanRPM),
			fmt.Sprintf("%.3f", s.SupplyVolts),
			fmt.Sprintf("%.3f", s.TotalWatts),
		}
		for rail := 0; rail < 3; rail++ {
			var v, a, p float64
			for _, r := range rails {
				if r.Rail == rail {
					v, a, p = r.Volts, r.Amps, r.Watts
				}
			}
			row = append(row,
				fmt.Sprintf("%.3f", v),
				fmt.Sprintf("%.3f", a),
				fmt.Sprintf("%.3f", p),
			)
		}

		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

// exportedSample is the JSON export shape
type exportedSample struct {
	ID          int64     `json:"id"`
	Device      string    `json:"device"`
	Taken       string    `json:"taken"`
	Name        string    `json:"name"`
	Vendor      string    `json:"vendor"`
	Product     string    `json:"product"`
	PoweredSecs uint32    `json:"powered_secs"`
	UptimeSecs  uint32    `json:"uptime_secs"`
	TempA       float64   `json:"temp1"`
	TempB       float64   `json:"temp2"`
	FanRPM      float64   `json:"fan_rpm"`
	SupplyVolts float64   `json:"supply_volts"`
	TotalWatts  float64   `json:"total_watts"`
	Rails       []RailRow `json:"rails"`
}

// ExportJSON exports archived samples to indented JSON
func (db *DB) ExportJSON(w io.Writer, filter SampleFilter) error {
	samples, err := db.ListSamples(filter)
	if err != nil {
		return fmt.Errorf("failed to list samples: %w", err)
	}

	out := make([]exportedSample, 0, len(samples))
	for _, s := range samples {
		rails, err := db.GetRails(s.ID)
		if err != nil {
			return err
		}
		out = append(out, exportedSample{
			ID:          s.ID,
			Device:      s.Device,
			Taken:       s.Taken.Format("2006-01-02 15:04:05"),
			Name:        s.Name,
			Vendor:      s.Vendor,
			Product:     s.Product,
			PoweredSecs: s.PoweredSecs,
			UptimeSecs:  s.UptimeSecs,
			TempA:       s.TempA,
			TempB:       s.TempB,
			FanRPM:      s.FanRPM,
			SupplyVolts: s.SupplyVolts,
			TotalWatts:  s.TotalWatts,
			Rails:       rails,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
