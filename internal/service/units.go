package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saadjs/hydrate-cli/internal/model"
)

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindVolume unitKind = "volume"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

const kgPerLb = 0.45359237

var unitTable = map[string]unitDef{
	// mass (base = kg)
	"kg":  {kind: unitKindMass, toBaseUnit: 1},
	"lb":  {kind: unitKindMass, toBaseUnit: kgPerLb},
	"lbs": {kind: unitKindMass, toBaseUnit: kgPerLb},

	// volume (base = ml)
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"cups":  {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},
	"floz":  {kind: unitKindVolume, toBaseUnit: 29.5735295625},
	"oz":    {kind: unitKindVolume, toBaseUnit: 29.5735295625},
}

// VolumeToML converts an amount in unit to whole millilitres.
func VolumeToML(amount float64, unit string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	def, ok := resolveUnit(unit)
	if !ok || def.kind != unitKindVolume {
		return 0, fmt.Errorf("unsupported volume unit %q (expected ml|l|cup|fl-oz)", unit)
	}
	ml := int(math.Round(amount * def.toBaseUnit))
	if ml <= 0 {
		return 0, fmt.Errorf("amount %.3f %s rounds to 0 ml", amount, unit)
	}
	return ml, nil
}

// ParseVolume reads values like "500", "500ml", "0.5l", "12 fl-oz" or
// "2cup". A bare number uses defaultUnit.
func ParseVolume(value, defaultUnit string) (int, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, fmt.Errorf("volume is required")
	}
	i := 0
	for i < len(value) && (value[i] == '.' || (value[i] >= '0' && value[i] <= '9')) {
		i++
	}
	amount, err := strconv.ParseFloat(value[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q", value)
	}
	unit := strings.TrimSpace(value[i:])
	if unit == "" {
		unit = defaultUnit
	}
	return VolumeToML(amount, unit)
}

// DefaultVolumeUnit is the unit a bare number is read in for a unit system.
func DefaultVolumeUnit(units model.UnitSystem) string {
	if units == model.UnitsImperial {
		return "fl-oz"
	}
	return "ml"
}

func FormatVolume(ml int, units model.UnitSystem) string {
	if units == model.UnitsImperial {
		return fmt.Sprintf("%.1f fl oz", float64(ml)/unitTable["fl-oz"].toBaseUnit)
	}
	if ml >= 1000 {
		return fmt.Sprintf("%.2f l", float64(ml)/1000)
	}
	return fmt.Sprintf("%d ml", ml)
}

func KgToLb(kg float64) float64 { return kg / kgPerLb }

func LbToKg(lb float64) float64 { return lb * kgPerLb }

// ParseWeight returns kilograms. A bare number uses the unit system's
// weight unit.
func ParseWeight(value string, units model.UnitSystem) (float64, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	unit := "kg"
	if units == model.UnitsImperial {
		unit = "lb"
	}
	for _, suffix := range []string{"kg", "lbs", "lb"} {
		if strings.HasSuffix(value, suffix) {
			unit = suffix
			value = strings.TrimSpace(strings.TrimSuffix(value, suffix))
			break
		}
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid weight %q", value)
	}
	return amount * unitTable[unit].toBaseUnit, nil
}

func resolveUnit(unit string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	def, ok := unitTable[u]
	return def, ok
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
