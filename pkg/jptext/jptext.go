// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Package jptext provides Unicode normalization for Japanese bibliographic input.

Browser and OS input methods disagree on how to encode accented and voiced
characters (macOS emits decomposed NFD sequences, most others composed NFC).
Citations are compared and deduplicated as plain strings, so every field is
normalized to NFC before formatting and storage.
*/
package jptext

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NFC returns the canonical composed (NFC) form of the input.
func NFC(input string) string {
	if norm.NFC.IsNormalString(input) {
		return input
	}
	return norm.NFC.String(input)
}

// Clean normalizes to NFC and trims surrounding whitespace.
func Clean(input string) string {
	return strings.TrimSpace(NFC(input))
}
