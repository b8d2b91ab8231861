package usda

import (
	"strings"

	"github.com/mealtrack/backend/internal/domain"
)

// USDA Nutrient IDs for the nutrients tracked in the catalog
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDFiber        = 1079
	NutrientIDSugar        = 2000
	NutrientIDSodium       = 1093
	NutrientIDCholesterol  = 1253
	NutrientIDVitaminA     = 1106
	NutrientIDVitaminC     = 1162
	NutrientIDCalcium      = 1087
	NutrientIDIron         = 1089
	NutrientIDPotassium    = 1092
	NutrientIDMagnesium    = 1090
	NutrientIDZinc         = 1095
	NutrientIDSelenium     = 1103
	NutrientIDVitaminD     = 1114
	NutrientIDVitaminB12   = 1178
	NutrientIDFolate       = 1177
	NutrientIDVitaminE     = 1109
)

const (
	defaultServingSize = 100
	defaultServingUnit = "g"
	defaultBrand       = "USDA"
)

type nutrientField struct {
	id     int
	number string
	field  func(*domain.Nutrients) *float64
}

// nutrientTable is the single mapping from USDA nutrient codes to the
// catalog's nutrient vector. Lists keyed by nutrient number use the same rows.
var nutrientTable = []nutrientField{
	{NutrientIDEnergy, "208", func(n *domain.Nutrients) *float64 { return &n.Calories }},
	{NutrientIDProtein, "203", func(n *domain.Nutrients) *float64 { return &n.ProteinG }},
	{NutrientIDCarbohydrate, "205", func(n *domain.Nutrients) *float64 { return &n.CarbsG }},
	{NutrientIDTotalFat, "204", func(n *domain.Nutrients) *float64 { return &n.FatG }},
	{NutrientIDFiber, "291", func(n *domain.Nutrients) *float64 { return &n.FiberG }},
	{NutrientIDSugar, "269", func(n *domain.Nutrients) *float64 { return &n.SugarG }},
	{NutrientIDSodium, "307", func(n *domain.Nutrients) *float64 { return &n.SodiumMg }},
	{NutrientIDCholesterol, "601", func(n *domain.Nutrients) *float64 { return &n.CholesterolMg }},
	{NutrientIDVitaminA, "320", func(n *domain.Nutrients) *float64 { return &n.VitaminAMcg }},
	{NutrientIDVitaminC, "401", func(n *domain.Nutrients) *float64 { return &n.VitaminCMg }},
	{NutrientIDCalcium, "301", func(n *domain.Nutrients) *float64 { return &n.CalciumMg }},
	{NutrientIDIron, "303", func(n *domain.Nutrients) *float64 { return &n.IronMg }},
	{NutrientIDPotassium, "306", func(n *domain.Nutrients) *float64 { return &n.PotassiumMg }},
	{NutrientIDMagnesium, "304", func(n *domain.Nutrients) *float64 { return &n.MagnesiumMg }},
	{NutrientIDZinc, "309", func(n *domain.Nutrients) *float64 { return &n.ZincMg }},
	{NutrientIDSelenium, "317", func(n *domain.Nutrients) *float64 { return &n.SeleniumMcg }},
	{NutrientIDVitaminD, "328", func(n *domain.Nutrients) *float64 { return &n.VitaminDMcg }},
	{NutrientIDVitaminB12, "418", func(n *domain.Nutrients) *float64 { return &n.VitaminB12Mcg }},
	{NutrientIDFolate, "435", func(n *domain.Nutrients) *float64 { return &n.FolateMcg }},
	{NutrientIDVitaminE, "323", func(n *domain.Nutrients) *float64 { return &n.VitaminEMg }},
}

var (
	fieldsByID     = make(map[int]nutrientField, len(nutrientTable))
	fieldsByNumber = make(map[string]nutrientField, len(nutrientTable))
)

func init() {
	for _, f := range nutrientTable {
		fieldsByID[f.id] = f
		fieldsByNumber[f.number] = f
	}
}

func lookupField(n domain.USDANutrient) (nutrientField, bool) {
	if f, ok := fieldsByID[n.NutrientID]; ok {
		return f, true
	}
	f, ok := fieldsByNumber[n.NutrientNumber]
	return f, ok
}

// ExtractNutrients maps a USDA nutrient list onto the nutrient vector.
// Unknown codes are ignored, missing amounts count as 0 and when a code
// appears more than once the last entry wins.
func ExtractNutrients(usdaNutrients []domain.USDANutrient) domain.Nutrients {
	nutrients := domain.Nutrients{}

	for _, nutrient := range usdaNutrients {
		f, ok := lookupField(nutrient)
		if !ok {
			continue
		}
		*f.field(&nutrients) = nutrient.Value()
	}

	return nutrients
}

// FindNutrientValue finds a specific nutrient value by ID, last entry winning
func FindNutrientValue(nutrients []domain.USDANutrient, nutrientID int) float64 {
	value := 0.0
	for _, nutrient := range nutrients {
		if nutrient.NutrientID == nutrientID {
			value = nutrient.Value()
		}
	}
	return value
}

// ResolveBrand picks brandOwner, then brandName, then "USDA".
func ResolveBrand(usdaFood *domain.USDAFood) string {
	if b := strings.TrimSpace(usdaFood.BrandOwner); b != "" {
		return b
	}
	if b := strings.TrimSpace(usdaFood.BrandName); b != "" {
		return b
	}
	return defaultBrand
}

// NormalizeFood converts a USDA food record and its extracted nutrients
// into a verified catalog food. The result has no ID until it is stored.
func NormalizeFood(usdaFood *domain.USDAFood, nutrients domain.Nutrients) *domain.Food {
	size, unit := float64(defaultServingSize), defaultServingUnit
	if usdaFood.ServingSize > 0 && strings.TrimSpace(usdaFood.ServingSizeUnit) != "" {
		size, unit = usdaFood.ServingSize, strings.TrimSpace(usdaFood.ServingSizeUnit)
	}

	food := &domain.Food{
		Name:        strings.TrimSpace(usdaFood.Description),
		Brand:       ResolveBrand(usdaFood),
		ServingSize: size,
		ServingUnit: unit,
		Nutrients:   clampNegative(nutrients),
		IsVerified:  true,
	}
	if usdaFood.FdcID > 0 {
		fdcID := usdaFood.FdcID
		food.FdcID = &fdcID
	}
	return food
}

// MapToFood runs extraction and normalization in one step.
func MapToFood(usdaFood *domain.USDAFood) *domain.Food {
	return NormalizeFood(usdaFood, ExtractNutrients(usdaFood.Nutrients))
}

func clampNegative(n domain.Nutrients) domain.Nutrients {
	for _, f := range nutrientTable {
		if v := f.field(&n); *v < 0 {
			*v = 0
		}
	}
	return n
}
