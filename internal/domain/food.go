package domain

import "time"

// Nutrients is the fixed nutrient vector stored per serving of a food.
// Every field is non-negative and defaults to 0 when the source omits it.
type Nutrients struct {
	Calories      float64 `json:"calories"`
	ProteinG      float64 `json:"protein_g"`
	CarbsG        float64 `json:"carbs_g"`
	FatG          float64 `json:"fat_g"`
	FiberG        float64 `json:"fiber_g"`
	SugarG        float64 `json:"sugar_g"`
	SodiumMg      float64 `json:"sodium_mg"`
	CholesterolMg float64 `json:"cholesterol_mg"`
	VitaminAMcg   float64 `json:"vitamin_a_mcg"`
	VitaminCMg    float64 `json:"vitamin_c_mg"`
	VitaminDMcg   float64 `json:"vitamin_d_mcg"`
	VitaminEMg    float64 `json:"vitamin_e_mg"`
	VitaminB12Mcg float64 `json:"vitamin_b12_mcg"`
	CalciumMg     float64 `json:"calcium_mg"`
	IronMg        float64 `json:"iron_mg"`
	MagnesiumMg   float64 `json:"magnesium_mg"`
	PotassiumMg   float64 `json:"potassium_mg"`
	ZincMg        float64 `json:"zinc_mg"`
	SeleniumMcg   float64 `json:"selenium_mcg"`
	FolateMcg     float64 `json:"folate_mcg"`
}

// Food is a catalog entry. Nutrient values are per ServingSize ServingUnit.
type Food struct {
	ID          string    `json:"id"`
	FdcID       *int64    `json:"fdc_id,omitempty"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	ServingSize float64   `json:"serving_size"`
	ServingUnit string    `json:"serving_unit"`
	Nutrients   Nutrients `json:"nutrients"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}
