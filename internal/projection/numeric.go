package projection

import "github.com/shopspring/decimal"

// Scale is the number of fractional digits grade and score columns keep.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// FromFloat converts a boundary value into a stored decimal with Scale digits.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(Scale)
}

// Float hands a decimal back across the boundary.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Hundredths is the SQL expression turning a numeric(5,2) column into whole hundredths.
// Aggregating hundredths keeps sums exact on stores without a decimal type.
func Hundredths(column string) string {
	return "CAST(ROUND(" + column + " * 100) AS BIGINT)"
}

// FromHundredths converts a count of hundredths back to a Scale-digit decimal.
func FromHundredths(d decimal.Decimal) decimal.Decimal {
	return d.Shift(-Scale)
}

// Percentage returns part / whole × 100 without rounding. A zero whole yields zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	// multiply first so exact quotients such as 6750/75 stay exact
	return part.Mul(hundred).Div(whole)
}

// Rate returns count / total × 100, or zero when total is zero.
func Rate(count, total int64) decimal.Decimal {
	return Percentage(decimal.NewFromInt(count), decimal.NewFromInt(total))
}

// Mean returns sum / count, or zero when count is zero.
func Mean(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count))
}

// Round2 rounds half away from zero to two places.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
