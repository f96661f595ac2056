// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

package psulink

import "fmt"

// AnomalyType classifies snapshot plausibility failures
type AnomalyType int

const (
	AnomalyInvalidTemp AnomalyType = iota
	AnomalyHighRPM
	AnomalyNegativeValue
	AnomalyRailOvervolt
)

// ValidationError describes one implausible reading. These are advisory:
// the protocol exchange succeeded, the decoded value just falls outside
// what a healthy unit reports.
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateSnapshot checks a snapshot against plausibility windows and
// returns every reading outside them (empty if all values are plausible).
// Intended for live dashboards flagging sensor glitches; never fatal.
func ValidateSnapshot(s *Snapshot) []ValidationError {
	errors := []ValidationError{}

	errors = append(errors, validateTemp("temp1", s.TempA)...)
	errors = append(errors, validateTemp("temp2", s.TempB)...)

	if s.FanRPM < 0 || s.FanRPM > 10000 {
		errors = append(errors, ValidationError{
			Type:    AnomalyHighRPM,
			Message: fmt.Sprintf("fan speed out of range (%.0f rpm, valid: 0-10000)", s.FanRPM),
			Details: map[string]interface{}{"value": s.FanRPM, "max": 10000.0},
		})
	}

	if s.SupplyVolts < 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyNegativeValue,
			Message: fmt.Sprintf("negative supply voltage (%.1fV)", s.SupplyVolts),
			Details: map[string]interface{}{"value": s.SupplyVolts},
		})
	}
	if s.TotalWatts < 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyNegativeValue,
			Message: fmt.Sprintf("negative total power (%.1fW)", s.TotalWatts),
			Details: map[string]interface{}{"value": s.TotalWatts},
		})
	}

	for i, r := range s.Rails {
		if r.Volts < 0 || r.Amps < 0 || r.Watts < 0 {
			errors = append(errors, ValidationError{
				Type:    AnomalyNegativeValue,
				Message: fmt.Sprintf("output%d has a negative reading (%.1fV %.1fA %.1fW)", i, r.Volts, r.Amps, r.Watts),
				Details: map[string]interface{}{"rail": i, "volts": r.Volts, "amps": r.Amps, "watts": r.Watts},
			})
		}
		if r.Volts > 16.0 {
			errors = append(errors, ValidationError{
				Type:    AnomalyRailOvervolt,
				Message: fmt.Sprintf("output%d voltage implausible (%.1fV, max 16V)", i, r.Volts),
				Details: map[string]interface{}{"rail": i, "volts": r.Volts, "max": 16.0},
			})
		}
	}

	return errors
}

func validateTemp(sensor string, temp float64) []ValidationError {
	if temp < -40.0 || temp > 150.0 {
		return []ValidationError{{
			Type:    AnomalyInvalidTemp,
			Message: fmt.Sprintf("%s out of range (%.1fC, valid: -40 to 150C)", sensor, temp),
			Details: map[string]interface{}{"sensor": sensor, "value": temp, "min": -40.0, "max": 150.0},
		}}
	}
	return nil
}
