package cuid2

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTimestamp(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "000000"},
		{1, "000001"},
		{62, "000010"},
		{60, "00000y"},
		{3600, "0000w4"},
		{86400, "000MTY"},
		{1704067200, "1rK5iq"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeTimestamp(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestEncodeTimestampSortsLexically(t *testing.T) {
	prev := EncodeTimestamp(1700000000)
	for _, s := range []int64{1700000001, 1700000062, 1800000000} {
		next := EncodeTimestamp(s)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestRandom(t *testing.T) {
	base62 := regexp.MustCompile(`^[0-9A-Za-z]+$`)
	for _, n := range []int{1, 18, 24, 100} {
		s := Random(n)
		assert.Len(t, s, n)
		assert.Regexp(t, base62, s)
	}
}

func TestPrefixed(t *testing.T) {
	at := time.Unix(1704067200, 0)

	id := prefixedAt(PrefixRule, Options{}, at)
	require.Len(t, id, len("rule_")+6+18)
	assert.Equal(t, "rule_1rK5iq", id[:11])

	id = prefixedAt("svc", Options{Unsorted: true}, at)
	assert.Len(t, id, len("svc_")+24)

	id = prefixedAt("x", Options{RandomLength: 4}, at)
	assert.Len(t, id, len("x_")+6+4)
}

func TestNewRuleIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewRuleID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
