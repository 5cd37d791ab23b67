package pricing

// Breakdown entry names.
const (
	EntryBase           = "base"
	EntryFrequency      = "frequency"
	EntryAddOns         = "addOns"
	EntryWindowCleaning = "windowCleaning"
	EntryRutDiscount    = "rutDiscount"
	EntryMinimumPrice   = "minimumPrice"
	EntryZeroFloor      = "floor"
)

// Discount types.
const (
	DiscountFrequency = "frequency"
	DiscountRut       = "rut"
)

// applyModifiers runs the universal modifiers in their fixed order:
// frequency, add-ons, window cleaning, RUT.
func (e *Engine) applyModifiers(result *PriceResult, in *NormalizedInput, svc *Service) error {
	e.applyFrequency(result, in)
	e.applyAddOns(result, in, svc)
	if err := e.applyWindowCleaning(result, in, svc); err != nil {
		return err
	}
	e.applyRut(result, in, svc)
	return nil
}

func (e *Engine) applyFrequency(result *PriceResult, in *NormalizedInput) {
	mult, ok := e.cfg.FrequencyMultipliers[string(in.Frequency)]
	if !ok || mult == 1 {
		return
	}
	before := result.TotalPrice
	delta := mul(before, mult) - before
	result.Adjust(EntryFrequency, delta)
	if mult < 1 {
		result.Discounts = append(result.Discounts, Discount{
			Type:       DiscountFrequency,
			Percentage: roundMoney((1 - mult) * 100),
			Amount:     roundMoney(-delta),
		})
	}
	e.logger.Debug().Str("frequency", string(in.Frequency)).Float64("multiplier", mult).Float64("delta", delta).Msg("frequency modifier")
}

func (e *Engine) applyAddOns(result *PriceResult, in *NormalizedInput, svc *Service) {
	sum := 0.0
	for _, id := range in.AddOns {
		price, ok := svc.AddOnPrices[id]
		if !ok {
			price, ok = e.cfg.AddOnPrices[id]
		}
		if !ok {
			e.logger.Warn().Str("add_on", id).Str("service_id", svc.ID).Msg("unknown add-on ignored")
			continue
		}
		result.AddOns = append(result.AddOns, AddOnCharge{ID: id, Price: price})
		sum += price
	}
	result.Adjust(EntryAddOns, sum)
}

// applyWindowCleaning adds the window-based charge on top of other models.
// A window_based service already priced the windows as its base.
func (e *Engine) applyWindowCleaning(result *PriceResult, in *NormalizedInput, svc *Service) error {
	if svc.ModelName() == ModelWindowBased || !hasWindows(in.WindowCleaning) {
		return nil
	}
	charge, err := windowCharge(e.cfg.WindowPrices, e.cfg.WindowMinimumCharge, in.WindowCleaning)
	if err != nil {
		return err
	}
	result.Adjust(EntryWindowCleaning, charge)
	e.logger.Debug().Float64("charge", charge).Msg("window cleaning modifier")
	return nil
}

func hasWindows(windows map[string]int) bool {
	for _, q := range windows {
		if q > 0 {
			return true
		}
	}
	return false
}

func (e *Engine) applyRut(result *PriceResult, in *NormalizedInput, svc *Service) {
	if !e.rutApplies(in, svc) {
		return
	}
	amount := mul(result.TotalPrice, e.cfg.RutPercentage)
	if amount <= 0 {
		return
	}
	result.Adjust(EntryRutDiscount, -amount)
	result.Discounts = append(result.Discounts, Discount{
		Type:       DiscountRut,
		Percentage: roundMoney(e.cfg.RutPercentage * 100),
		Amount:     amount,
	})
	e.logger.Debug().Float64("amount", amount).Msg("rut discount")
}

// rutApplies requires the caller's request, an eligible zip and a service
// not opted out of RUT.
func (e *Engine) rutApplies(in *NormalizedInput, svc *Service) bool {
	if !in.UseRut || in.ZipCode == "" {
		return false
	}
	if svc.RutEligible != nil && !*svc.RutEligible {
		return false
	}
	_, ok := e.rutZips[in.ZipCode]
	return ok
}

// applyFloors enforces the service minimum and then clamps at zero.
func applyFloors(result *PriceResult, svc *Service) {
	if svc.MinimumPrice > 0 && result.TotalPrice < svc.MinimumPrice {
		result.Adjust(EntryMinimumPrice, svc.MinimumPrice-result.TotalPrice)
	}
	if result.TotalPrice < 0 {
		result.Adjust(EntryZeroFloor, -result.TotalPrice)
	}
}
