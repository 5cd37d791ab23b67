// Package cuid2 generates short, prefixed, time-sortable identifiers for
// rules and other in-memory registry entries.
package cuid2

import (
	"crypto/rand"
	"strings"
	"time"
)

// base62 alphabet in ASCII order, so encoded timestamps sort lexically.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// timestampWidth covers about 1800 years of Unix seconds.
const timestampWidth = 6

// PrefixRule prefixes rule ids.
const PrefixRule = "rule"

// EncodeTimestamp encodes Unix seconds as a fixed-width base62 string.
func EncodeTimestamp(seconds int64) string {
	out := make([]byte, timestampWidth)
	for i := timestampWidth - 1; i >= 0; i-- {
		out[i] = alphabet[seconds%62]
		seconds /= 62
	}
	return string(out)
}

// Random returns length uniformly distributed base62 characters.
// It draws 6 bits per character and rejects values above 61.
func Random(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	buf := make([]byte, length+8)
	for sb.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			panic("cuid2: reading random bytes: " + err.Error())
		}
		for _, b := range buf {
			v := b & 0x3f
			if v < 62 {
				sb.WriteByte(alphabet[v])
				if sb.Len() == length {
					break
				}
			}
		}
	}
	return sb.String()
}

// Options tunes Prefixed.
type Options struct {
	// Unsorted drops the timestamp segment.
	Unsorted bool
	// RandomLength defaults to 18 for sortable ids and 24 otherwise.
	RandomLength int
}

// Prefixed returns prefix_<timestamp><random>, or prefix_<random> when
// opts.Unsorted is set.
func Prefixed(prefix string, opts Options) string {
	return prefixedAt(prefix, opts, time.Now())
}

func prefixedAt(prefix string, opts Options, now time.Time) string {
	n := opts.RandomLength
	if opts.Unsorted {
		if n <= 0 {
			n = 24
		}
		return prefix + "_" + Random(n)
	}
	if n <= 0 {
		n = 18
	}
	return prefix + "_" + EncodeTimestamp(now.Unix()) + Random(n)
}

// NewRuleID returns a time-sortable rule id.
func NewRuleID() string {
	return Prefixed(PrefixRule, Options{})
}
