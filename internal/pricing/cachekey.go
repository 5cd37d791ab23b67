package pricing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
)

// CacheKeyVersion is bumped whenever the canonical form changes.
const CacheKeyVersion = 2

// cacheDateLayout keys the booking date by its local wall-clock hour and
// offset. Time-of-day and seasonal multipliers read the hour and month in
// the booking's own zone, so the same instant in two zones may price
// differently.
const cacheDateLayout = "2006-01-02T15Z07:00"

// ComputeCacheKey returns a deterministic hash of the normalized input and
// the service definition. Add-ons and map entries are sorted, so callers'
// ordering never changes the key.
func ComputeCacheKey(n *NormalizedInput, svc *Service) string {
	var buf bytes.Buffer
	line := func(name, value string) {
		buf.WriteString(name)
		buf.WriteByte(':')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}

	line("v", strconv.Itoa(CacheKeyVersion))
	line("service", n.ServiceID)
	line("definition", serviceFingerprint(svc))
	line("area", strconv.FormatFloat(n.Area, 'f', -1, 64))
	line("rooms", strconv.Itoa(n.Rooms))
	line("roomTypes", canonicalCounts(n.RoomTypes))
	line("frequency", string(n.Frequency))
	line("addOns", joinSorted(n.AddOns))
	line("windows", canonicalCounts(n.WindowCleaning))
	line("zip", n.ZipCode)
	line("rut", strconv.FormatBool(n.UseRut))
	line("promo", n.PromoCode)
	line("date", n.Date.Format(cacheDateLayout))

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}

// serviceFingerprint hashes the service definition so edits to a service
// never serve stale prices.
func serviceFingerprint(svc *Service) string {
	if svc == nil {
		return "-"
	}
	data, err := json.Marshal(svc)
	if err != nil {
		return "!" + svc.ID
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

func joinSorted(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	var buf bytes.Buffer
	for i, v := range sorted {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(v))
	}
	return buf.String()
}

func canonicalCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte('=')
		buf.WriteString(strconv.Itoa(m[k]))
	}
	return buf.String()
}
