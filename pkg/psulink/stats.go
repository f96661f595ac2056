// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import (
	"errors"
	"fmt"
	"time"
)

// Stats tracks poll outcomes and rates for a monitored supply
type Stats struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPolls      uint64
	CleanPolls      uint64
	TransportErrors uint64
	EchoMismatches  uint64
	Anomalies       uint64
	InvalidTemp     uint64
	HighRPM         uint64
	NegativeValues  uint64
	RailOvervolt    uint64

	// Rates (calculated)
	PollRate  float64 // polls/sec
	ErrorRate float64 // errors/sec
}

// NewStats creates a new statistics tracker
func NewStats() *Stats {
	now := time.Now()
	return &Stats{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records the outcome of one snapshot poll
func (s *Stats) Update(snap *Snapshot, err error, anomalies []ValidationError) {
	s.TotalPolls++

	if err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			s.EchoMismatches++
		} else {
			s.TransportErrors++
		}
		return
	}

	if len(anomalies) > 0 {
		for _, a := range anomalies {
			s.Anomalies++
			switch a.Type {
			case AnomalyInvalidTemp:
				s.InvalidTemp++
			case AnomalyHighRPM:
				s.HighRPM++
			case AnomalyNegativeValue:
				s.NegativeValues++
			case AnomalyRailOvervolt:
				s.RailOvervolt++
			}
		}
	} else {
		s.CleanPolls++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates poll and error rates
func (s *Stats) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PollRate = float64(s.TotalPolls) / elapsed
		errorCount := s.TransportErrors + s.EchoMismatches + s.Anomalies
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Stats) String() string {
	s.CalculateRates()

	var cleanPercent, transportPercent, mismatchPercent, anomalyPercent float64
	if s.TotalPolls > 0 {
		cleanPercent = float64(s.CleanPolls) * 100.0 / float64(s.TotalPolls)
		transportPercent = float64(s.TransportErrors) * 100.0 / float64(s.TotalPolls)
		mismatchPercent = float64(s.EchoMismatches) * 100.0 / float64(s.TotalPolls)
		anomalyPercent = float64(s.Anomalies) * 100.0 / float64(s.TotalPolls)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Polls:     %8d\n", s.TotalPolls)
	result += fmt.Sprintf("Clean Polls:     %8d (%.1f%%)\n", s.CleanPolls, cleanPercent)

	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Transport Errors:%8d (%.1f%%)\n", s.TransportErrors, transportPercent)
	}
	if s.EchoMismatches > 0 {
		result += fmt.Sprintf("Echo Mismatches: %8d (%.1f%%)\n", s.EchoMismatches, mismatchPercent)
	}
	if s.Anomalies > 0 {
		result += fmt.Sprintf("Anomalies:       %8d (%.1f%%)\n", s.Anomalies, anomalyPercent)
		if s.InvalidTemp > 0 {
			result += fmt.Sprintf("  Invalid Temp:     %5d\n", s.InvalidTemp)
		}
		if s.HighRPM > 0 {
			result += fmt.Sprintf("  High Fan RPM:     %5d\n", s.HighRPM)
		}
		if s.NegativeValues > 0 {
			result += fmt.Sprintf("  Negative Values:  %5d\n", s.NegativeValues)
		}
		if s.RailOvervolt > 0 {
			result += fmt.Sprintf("  Rail Overvolt:    %5d\n", s.RailOvervolt)
		}
	}

	result += fmt.Sprintf("Poll Rate:       %8.1f polls/sec\n", s.PollRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Stats) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalPolls = 0
	s.CleanPolls = 0
	s.TransportErrors = 0
	s.EchoMismatches = 0
	s.Anomalies = 0
	s.InvalidTemp = 0
	s.HighRPM = 0
	s.NegativeValues = 0
	s.RailOvervolt = 0
	s.PollRate = 0
	s.ErrorRate = 0
}
