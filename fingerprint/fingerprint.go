// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package fingerprint derives a coarse device fingerprint from environment
// metadata. It is a weak anti-duplicate heuristic, not an identity system:
// collisions and resets are expected, and nothing may depend on its
// uniqueness.
package fingerprint

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Probe is the raw device metadata a fingerprint is computed from. It is
// assembled at the boundary so tests can substitute a fixed probe.
type Probe struct {
	UserAgent           string
	Language            string
	ScreenWidth         int
	ScreenHeight        int
	TimezoneOffsetMin   int
	HardwareConcurrency int
	DeviceMemoryGB      int
	RenderSample        string
}

func (p Probe) join() string {
	hc := "unknown"
	if p.HardwareConcurrency > 0 {
		hc = strconv.Itoa(p.HardwareConcurrency)
	}
	dm := "unknown"
	if p.DeviceMemoryGB > 0 {
		dm = strconv.Itoa(p.DeviceMemoryGB)
	}
	return strings.Join([]string{
		p.UserAgent,
		p.Language,
		fmt.Sprintf("%dx%d", p.ScreenWidth, p.ScreenHeight),
		strconv.Itoa(p.TimezoneOffsetMin),
		hc,
		dm,
		p.RenderSample,
	}, "|")
}

// Compute hashes the probe into a short base-36 string. The hash is the
// classic 32-bit rolling hash h = (h<<5) - h + c, kept for compatibility
// with fingerprints recorded by earlier clients.
func Compute(p Probe) string {
	var h int32
	for _, c := range p.join() {
		h = (h<<5 - h) + c
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// HostProbe assembles a probe from the running host. The fields stand in for
// their browser counterparts; hostname takes the place of the canvas render
// sample.
func HostProbe() Probe {
	host, _ := os.Hostname()
	lang := os.Getenv("LANG")
	if lang == "" {
		lang = "unknown"
	}
	return Probe{
		UserAgent:           runtime.GOOS + "/" + runtime.GOARCH,
		Language:            lang,
		TimezoneOffsetMin:   tzOffsetMinutes(),
		HardwareConcurrency: runtime.NumCPU(),
		RenderSample:        host,
	}
}

func tzOffsetMinutes() int {
	_, offsetSec := time.Now().Zone()
	// Browser convention: minutes west of UTC.
	return -offsetSec / 60
}
