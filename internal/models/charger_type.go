package models

// Charger-class labels form a closed vocabulary owned by this package.
// Every consumer (host registration intake, charger CRUD, seed data)
// validates against this set so UI option lists cannot drift from the
// backend.
const (
	ChargerTypeRegular   = "Regular Charging (22kW)"
	ChargerTypeFast      = "Fast Charging (50kW)"
	ChargerTypeSuperFast = "Super Fast Charging (120kW)"
	ChargerTypeUltraFast = "Ultra Fast Charging (250kW)"
	ChargerTypeTesla     = "Tesla Supercharger"
)

// ChargerTypes lists the closed charger-class vocabulary in display order.
var ChargerTypes = []string{
	ChargerTypeRegular,
	ChargerTypeFast,
	ChargerTypeSuperFast,
	ChargerTypeUltraFast,
	ChargerTypeTesla,
}

// IsValidChargerType reports whether the label belongs to the closed vocabulary.
func IsValidChargerType(label string) bool {
	for _, known := range ChargerTypes {
		if label == known {
			return true
		}
	}
	return false
}
