package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

// serviceAlias drops Service's methods so encoding/json uses field tags.
type serviceAlias Service

type serviceDocument struct {
	*serviceAlias
	PricingModel  ModelName       `json:"pricingModel"`
	PricingConfig json.RawMessage `json:"pricingConfig,omitempty"`
}

// UnmarshalJSON decodes pricingConfig into the variant named by pricingModel.
// A missing pricingModel leaves Model nil.
func (s *Service) UnmarshalJSON(data []byte) error {
	doc := serviceDocument{serviceAlias: (*serviceAlias)(s)}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.Model = nil
	if doc.PricingModel == "" {
		return nil
	}
	model, err := NewModel(doc.PricingModel)
	if err != nil {
		return err
	}
	cfg := bytes.TrimSpace(doc.PricingConfig)
	if len(cfg) > 0 && !bytes.Equal(cfg, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(cfg))
		dec.DisallowUnknownFields()
		if err := dec.Decode(model); err != nil {
			return pricingerr.Wrap(pricingerr.KindInvalidService, err,
				fmt.Sprintf("invalid pricingConfig for %s", doc.PricingModel)).
				WithDetail("serviceId", s.ID)
		}
	}
	s.Model = model
	return nil
}

// MarshalJSON writes the model back as pricingModel and pricingConfig.
func (s Service) MarshalJSON() ([]byte, error) {
	doc := serviceDocument{serviceAlias: (*serviceAlias)(&s)}
	if s.Model != nil {
		cfg, err := json.Marshal(s.Model)
		if err != nil {
			return nil, err
		}
		doc.PricingModel = s.Model.Name()
		doc.PricingConfig = cfg
	}
	return json.Marshal(doc)
}
