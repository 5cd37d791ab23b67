package validation

// Frequencies accepted by pricing input.
var Frequencies = []any{"weekly", "biweekly", "monthly", "quarterly", "yearly"}

const (
	MinArea  = 1
	MaxArea  = 1000
	MinRooms = 1
	MaxRooms = 50
)

// PricingInputSchema is the schema applied by ValidatePricingInput.
func PricingInputSchema() Schema {
	return Schema{
		"service":              {Required().WithMessage("service is required"), OfType(TypeObject)},
		"service.id":           {Required(), OfType(TypeString)},
		"service.pricingModel": {Required(), OfType(TypeString)},
		"area":                 {Required(), OfType(TypeNumber), Range(MinArea, MaxArea)},
		"rooms":                {OfType(TypeInteger), Range(MinRooms, MaxRooms)},
		"frequency":            {OfType(TypeString), Enum(Frequencies...)},
		"zipCode":              {OfType(TypeZipCode).WithMessage("must be a 5 digit zip code")},
		"addOns":               {ArrayOf(OfType(TypeString))},
		"windowCleaning":       {OfType(TypeObject)},
		"useRut":               {OfType(TypeBoolean)},
		"promoCode":            {OfType(TypeString), Max(64)},
		"date":                 {OfType(TypeDate)},
	}
}

// CustomerInfoSchema is the schema applied by ValidateCustomerInfo.
func CustomerInfoSchema() Schema {
	return Schema{
		"name":    {Required(), OfType(TypeString), Min(2).WithMessage("must be at least 2 characters")},
		"email":   {Required(), OfType(TypeEmail).WithMessage("must be a valid email address")},
		"phone":   {Required(), OfType(TypePhone).WithMessage("must be a valid Swedish phone number")},
		"address": {OfType(TypeString), Min(5).AsWarning()},
		"zipCode": {OfType(TypeZipCode).WithMessage("must be a 5 digit zip code")},
	}
}

// ValidatePricingInput validates a raw pricing input record.
func (e *Engine) ValidatePricingInput(data map[string]any) *ObjectResult {
	return e.ValidateObject(data, PricingInputSchema())
}

// ValidateCustomerInfo validates a raw customer record.
func (e *Engine) ValidateCustomerInfo(data map[string]any) *ObjectResult {
	return e.ValidateObject(data, CustomerInfoSchema())
}
