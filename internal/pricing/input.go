package pricing

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// compactZip strips the space Swedish zip codes are often written with.
func compactZip(zip string) string {
	return strings.ReplaceAll(strings.TrimSpace(zip), " ", "")
}

// checkInput performs the structural checks that must pass before pricing.
func (e *Engine) checkInput(in *Input) error {
	var errs []pricingerr.FieldError
	add := func(field, msg string) {
		errs = append(errs, pricingerr.FieldError{Field: field, Message: msg})
	}
	if in.Service == nil {
		add("service", "is required")
	} else if in.Service.ID == "" {
		add("service.id", "is required")
	}
	switch {
	case !finite(in.Area) || in.Area <= 0:
		add("area", "must be greater than 0")
	case in.Area < e.cfg.MinArea || in.Area > e.cfg.MaxArea:
		add("area", "must be between "+cast.ToString(e.cfg.MinArea)+" and "+cast.ToString(e.cfg.MaxArea))
	}
	if in.Rooms < 0 {
		add("rooms", "must not be negative")
	}
	if in.Frequency != "" && !in.Frequency.IsValid() {
		add("frequency", "must be one of: weekly, biweekly, monthly, quarterly, yearly")
	}
	if in.ZipCode != "" && !zipPattern.MatchString(compactZip(in.ZipCode)) {
		add("zipCode", "must be a 5-digit zip code")
	}
	for k, q := range in.WindowCleaning {
		if q < 0 {
			add("windowCleaning."+k, "must not be negative")
		}
	}
	for k, q := range in.RoomTypes {
		if q < 0 {
			add("roomTypes."+k, "must not be negative")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return pricingerr.Validation(errs)
}

// normalize applies defaults and canonical ordering. It never fails.
func normalize(in *Input, now time.Time) *NormalizedInput {
	n := &NormalizedInput{
		Area:           in.Area,
		Rooms:          in.Rooms,
		Frequency:      in.Frequency,
		ZipCode:        compactZip(in.ZipCode),
		UseRut:         in.UseRut,
		PromoCode:      strings.TrimSpace(in.PromoCode),
		WindowCleaning: map[string]int{},
		AddOns:         []string{},
	}
	if in.Service != nil {
		n.ServiceID = in.Service.ID
	}
	if n.Frequency == "" {
		n.Frequency = FrequencyMonthly
	}
	if in.Date != nil && !in.Date.IsZero() {
		n.Date = *in.Date
	} else {
		n.Date = now
	}
	seen := make(map[string]struct{}, len(in.AddOns))
	for _, a := range in.AddOns {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		n.AddOns = append(n.AddOns, a)
	}
	sort.Strings(n.AddOns)
	for k, q := range in.WindowCleaning {
		if q > 0 {
			n.WindowCleaning[k] = q
		}
	}
	if len(in.RoomTypes) > 0 {
		n.RoomTypes = make(map[string]int, len(in.RoomTypes))
		for k, q := range in.RoomTypes {
			if q > 0 {
				n.RoomTypes[k] = q
			}
		}
	}
	return n
}

// InputFromRecord coerces a loosely typed record, such as decoded form data,
// into an Input. Numeric fields may arrive as strings.
func InputFromRecord(record map[string]any, svc *Service) (*Input, error) {
	in := &Input{Service: svc}
	var err error
	bad := func(field string, cause error) error {
		return pricingerr.Wrap(pricingerr.KindInvalidInput, cause, field+" has an invalid value").
			WithDetail("field", field)
	}
	if v, ok := record["area"]; ok && v != nil {
		if in.Area, err = cast.ToFloat64E(v); err != nil {
			return nil, bad("area", err)
		}
	}
	if v, ok := record["rooms"]; ok && v != nil {
		if in.Rooms, err = cast.ToIntE(v); err != nil {
			return nil, bad("rooms", err)
		}
	}
	if v, ok := record["frequency"]; ok && v != nil {
		in.Frequency = Frequency(cast.ToString(v))
	}
	if v, ok := record["zipCode"]; ok && v != nil {
		in.ZipCode = cast.ToString(v)
	}
	if v, ok := record["promoCode"]; ok && v != nil {
		in.PromoCode = cast.ToString(v)
	}
	if v, ok := record["useRut"]; ok && v != nil {
		if in.UseRut, err = cast.ToBoolE(v); err != nil {
			return nil, bad("useRut", err)
		}
	}
	if v, ok := record["addOns"]; ok && v != nil {
		if in.AddOns, err = cast.ToStringSliceE(v); err != nil {
			return nil, bad("addOns", err)
		}
	}
	if v, ok := record["windowCleaning"]; ok && v != nil {
		if in.WindowCleaning, err = toCounts(v); err != nil {
			return nil, bad("windowCleaning", err)
		}
	}
	if v, ok := record["roomTypes"]; ok && v != nil {
		if in.RoomTypes, err = toCounts(v); err != nil {
			return nil, bad("roomTypes", err)
		}
	}
	if v, ok := record["date"]; ok && v != nil && v != "" {
		t, err := cast.ToTimeE(v)
		if err != nil {
			return nil, bad("date", err)
		}
		in.Date = &t
	}
	return in, nil
}

func toCounts(v any) (map[string]int, error) {
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m))
	for k, raw := range m {
		q, err := cast.ToIntE(raw)
		if err != nil {
			return nil, err
		}
		out[k] = q
	}
	return out, nil
}
