// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fingerprint derives a stable device fingerprint from observable host
attributes.

# Algorithm

A Probe's fields are joined with "|" (empty fields become "unknown") and
hashed with a 32-bit rolling hash:

	h = (h << 5) - h + c

for each rune c. The absolute value is rendered in base 36, giving short keys
like "1jbe4xk". The algorithm is fixed: fingerprints computed by different
clients from the same probe must agree, since they key shared evidence
entries (fp_<fingerprint>_<roomID>).

# Probes

Compute takes an explicit Probe so callers can supply real browser-equivalent
attributes. HostProbe builds one from what a headless host can observe: OS
and architecture, locale, CPU count, hostname, and timezone offset.

The fingerprint is a soft duplicate-detection signal only. It is one of
several redundant evidence surfaces and never the sole basis for rejecting
a vote.
*/
package fingerprint
