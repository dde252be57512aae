// Package fees computes the legally-structured fee breakdown for an
// application. Compute is pure: identical inputs always produce an identical
// breakdown, line order included.
package fees

import (
	"math"

	"permitdesk/internal/wizard/models"
)

const (
	// Currency is the only currency the fee schedule is defined in.
	Currency = "JMD"

	expeditedSurcharge models.Money = 1000
	emergencySurcharge models.Money = 2500

	durationBlockDays = 30
	durationBlockFee  models.Money = 500

	environmentalFee models.Money = 1500
	heritageFee      models.Money = 2000

	processingRate = 0.05
	gctRate        = 0.165
)

// Multipliers for the two multiplicative surcharges. A surcharge line is
// emitted only when the multiplier exceeds 1.
var trafficMultipliers = map[models.TrafficImpact]float64{
	models.TrafficMinimal:     1.0,
	models.TrafficModerate:    1.2,
	models.TrafficSignificant: 1.5,
	models.TrafficMajor:       2.0,
}

var scheduleMultipliers = map[models.WorkSchedule]float64{
	models.ScheduleBusinessHours: 1.0,
	models.ScheduleExtendedHours: 1.1,
	models.ScheduleNightWork:     1.5,
	models.ScheduleWeekendWork:   1.3,
}

// Compute derives the fee breakdown for an application type and its project
// details. A nil or unknown application type yields an empty breakdown with
// no line items; the wizard treats that as soft degradation, not an error.
//
// Order is load-bearing: the processing fee applies to the subtotal of all
// surcharges, and GCT applies to the total after the processing fee has been
// added. Each line is rounded to a whole JMD unit at the point it is
// computed, not at the end.
func Compute(appType *models.ApplicationType, pd models.ProjectDetails) models.FeeBreakdown {
	bd := models.FeeBreakdown{Currency: Currency}
	if appType == nil {
		return bd
	}
	catalogType, ok := models.LookupApplicationType(appType.ID)
	if !ok {
		return bd
	}
	base := catalogType.BaseFee

	add := func(label string, amount models.Money, kind models.FeeLineKind) {
		bd.Items = append(bd.Items, models.FeeLineItem{Label: label, Amount: amount, Kind: kind})
		bd.Total += amount
	}

	add("Base Fee", base, models.FeeLineBase)

	switch pd.UrgencyLevel {
	case models.UrgencyExpedited:
		add("Expedited Processing", expeditedSurcharge, models.FeeLineSurcharge)
	case models.UrgencyEmergency:
		add("Emergency Processing", emergencySurcharge, models.FeeLineSurcharge)
	}

	if m := trafficMultipliers[pd.TrafficImpact]; m > 1 {
		add("Traffic Impact Surcharge", roundMoney(float64(base)*(m-1)), models.FeeLineSurcharge)
	}
	if m := scheduleMultipliers[pd.WorkSchedule]; m > 1 {
		add("Work Schedule Surcharge", roundMoney(float64(base)*(m-1)), models.FeeLineSurcharge)
	}

	if pd.ProjectDuration > durationBlockDays {
		blocks := (pd.ProjectDuration - durationBlockDays + durationBlockDays - 1) / durationBlockDays
		if fee := models.Money(blocks) * durationBlockFee; fee > 0 {
			add("Extended Duration Surcharge", fee, models.FeeLineSurcharge)
		}
	}

	if pd.EnvironmentalAssessment {
		add("Environmental Assessment", environmentalFee, models.FeeLineFixed)
	}
	if pd.HeritageSite {
		add("Heritage Site Review", heritageFee, models.FeeLineFixed)
	}

	// Processing fee compounds on the subtotal; GCT compounds on the total
	// after the processing fee. A zero subtotal attracts neither.
	subtotal := bd.Total
	if subtotal > 0 {
		add("Processing Fee (5%)", roundMoney(float64(subtotal)*processingRate), models.FeeLineProcessing)
		add("GCT (16.5%)", roundMoney(float64(bd.Total)*gctRate), models.FeeLineTax)
	}

	return bd
}

func roundMoney(v float64) models.Money {
	return models.Money(math.Round(v))
}
