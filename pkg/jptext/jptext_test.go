// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package jptext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hiroto333/references/pkg/jptext"
)

/*
TestNFC verifies that decomposed kana sequences are composed.
*/
func TestNFC(t *testing.T) {
	// "ガ" as base katakana KA + combining voiced sound mark (NFD)
	decomposed := "ガ"
	composed := "ガ"

	assert.Equal(t, composed, jptext.NFC(decomposed))

	// Already-normalized input passes through unchanged
	assert.Equal(t, "山田太郎", jptext.NFC("山田太郎"))
	assert.Equal(t, "", jptext.NFC(""))
}

/*
TestClean verifies NFC normalization plus whitespace trimming.
*/
func TestClean(t *testing.T) {
	assert.Equal(t, "山田太郎", jptext.Clean("  山田太郎\t"))
	assert.Equal(t, "ガ", jptext.Clean(" ガ "))
}
