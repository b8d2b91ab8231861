package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// USDAFood represents a food item from the USDA FoodData Central API.
// Search results and detail responses share this shape.
type USDAFood struct {
	FdcID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	DataType        string         `json:"dataType,omitempty"`
	BrandOwner      string         `json:"brandOwner,omitempty"`
	BrandName       string         `json:"brandName,omitempty"`
	ServingSize     float64        `json:"servingSize,omitempty"`
	ServingSizeUnit string         `json:"servingSizeUnit,omitempty"`
	Nutrients       []USDANutrient `json:"foodNutrients"`
}

// USDANutrient is a single nutrient entry normalized from any of the
// FoodData Central payload shapes:
//
//	search:  {"nutrientId": 1003, "nutrientNumber": "203", "value": 10.5}
//	detail:  {"nutrient": {"id": 1003, "number": "203"}, "amount": 10.5}
//	list:    {"number": "203", "amount": 10.5}
//
// Amount is nil when the payload carries no value.
type USDANutrient struct {
	NutrientID     int
	NutrientNumber string
	NutrientName   string
	UnitName       string
	Amount         *float64
}

// Value returns the amount, or 0 when absent.
func (n USDANutrient) Value() float64 {
	if n.Amount == nil {
		return 0
	}
	return *n.Amount
}

type usdaNutrientRef struct {
	ID       int        `json:"id"`
	Number   flexString `json:"number"`
	Name     string     `json:"name"`
	UnitName string     `json:"unitName"`
}

type usdaNutrientWire struct {
	NutrientID     int              `json:"nutrientId,omitempty"`
	NutrientNumber flexString       `json:"nutrientNumber,omitempty"`
	NutrientName   string           `json:"nutrientName,omitempty"`
	UnitName       string           `json:"unitName,omitempty"`
	Value          *float64         `json:"value,omitempty"`
	Amount         *float64         `json:"amount,omitempty"`
	Number         flexString       `json:"number,omitempty"`
	Name           string           `json:"name,omitempty"`
	Nutrient       *usdaNutrientRef `json:"nutrient,omitempty"`
}

func (n *USDANutrient) UnmarshalJSON(data []byte) error {
	var w usdaNutrientWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*n = USDANutrient{
		NutrientID:     w.NutrientID,
		NutrientNumber: firstNonEmpty(string(w.NutrientNumber), string(w.Number)),
		NutrientName:   firstNonEmpty(w.NutrientName, w.Name),
		UnitName:       w.UnitName,
		Amount:         w.Value,
	}
	if n.Amount == nil {
		n.Amount = w.Amount
	}
	if ref := w.Nutrient; ref != nil {
		if n.NutrientID == 0 {
			n.NutrientID = ref.ID
		}
		n.NutrientNumber = firstNonEmpty(n.NutrientNumber, string(ref.Number))
		n.NutrientName = firstNonEmpty(n.NutrientName, ref.Name)
		n.UnitName = firstNonEmpty(n.UnitName, ref.UnitName)
	}
	return nil
}

// MarshalJSON writes the search-result shape.
func (n USDANutrient) MarshalJSON() ([]byte, error) {
	return json.Marshal(usdaNutrientWire{
		NutrientID:     n.NutrientID,
		NutrientNumber: flexString(n.NutrientNumber),
		NutrientName:   n.NutrientName,
		UnitName:       n.UnitName,
		Value:          n.Amount,
	})
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// flexString decodes a JSON string or number into its textual form.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
