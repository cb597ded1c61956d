package utils

// Currencies whose minor unit is not two decimal places. Everything absent
// from this map rounds to two decimals.
var currencyMinorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// CurrencyMinorUnits returns the number of decimal places commission
// amounts are rounded to for the given ISO 4217 code.
func CurrencyMinorUnits(code string) int32 {
	if units, ok := currencyMinorUnits[code]; ok {
		return units
	}
	return 2
}
