package forecast

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// SystemPrompt frames the forecasting service as an analyst answering in JSON
const SystemPrompt = "You are an expert financial forecasting analyst with deep expertise in pattern recognition, " +
	"trend analysis, and predictive modeling. Analyze transaction patterns with statistical rigor " +
	"and provide accurate, justified predictions in JSON format only."

const banner = "================================================================"

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(banner + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString(banner + "\n")
}

// BuildPrompt renders the statistical pre-analysis, the full summary and the
// methodology the forecasting service is asked to follow.
func BuildPrompt(summary *Summary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	from, to := summary.Target.From, summary.Target.To
	months := percent(summary.PeriodMonths)

	var sb strings.Builder
	sb.WriteString("You are an expert financial forecasting analyst. Analyze the HISTORICAL transaction data and predict FUTURE financial outcomes.\n\n")

	section(&sb, "PREDICTION TARGET (FUTURE PERIOD TO FORECAST)")
	fmt.Fprintf(&sb, "From: %s\nTo:   %s\nDuration: %s months\n\n", from, to, months)

	sb.WriteString("CRITICAL INSTRUCTIONS:\n")
	fmt.Fprintf(&sb, "1. The data below shows HISTORICAL transactions (BEFORE %s)\n", from)
	fmt.Fprintf(&sb, "2. You must predict what WILL HAPPEN in the FUTURE period (%s to %s)\n", from, to)
	sb.WriteString("3. DO NOT simply report historical averages - analyze patterns and project forward\n")
	sb.WriteString("4. Weight RECENT data (last 3-6 months) MORE HEAVILY than older data\n")
	sb.WriteString("5. Detect and continue RECURRING patterns (salary, rent, subscriptions)\n")
	sb.WriteString("6. Account for TRENDS (growing/declining income or expenses)\n")
	sb.WriteString("7. Be REALISTIC - base predictions on actual patterns, not wishes\n\n")

	section(&sb, "STATISTICAL PRE-ANALYSIS")
	writeStatistics(&sb, summary)
	sb.WriteString("\n")

	section(&sb, "DETAILED HISTORICAL DATA")
	sb.Write(data)
	sb.WriteString("\n\n")

	section(&sb, "YOUR FORECASTING METHODOLOGY")
	sb.WriteString(`For EACH currency with data:

1. INCOME PREDICTION:
   - If recurring income detected: Use recurring amount x number of months
   - Apply trend adjustment: If growing at X% per month, compound it
   - Weight recent 3-month average at 60%, 6-month at 30%, overall at 10%
   - Account for any detected patterns (seasonal variations, bonuses)

2. EXPENSE PREDICTION:
   - Use recent 3-month average as baseline (weight: 60%)
   - Apply trend: If expenses growing at X% per month, compound it
   - Consider top categories: Recurring bills stay stable, discretionary may vary
   - Weight recent 6-month average at 30%, overall at 10%

3. CONFIDENCE SCORING:
   - High (80-95%): Clear recurring patterns, stable trends, consistent data
   - Medium (60-79%): Some patterns, moderate consistency
   - Low (40-59%): High variability, limited data, unclear patterns
   - Very Low (20-39%): Sparse or erratic data

`)

	section(&sb, "OUTPUT FORMAT (PURE JSON, NO MARKDOWN)")
	sb.WriteString(`{
    "predictions": {
        "EUR": {
            "predicted_income": <total for entire period>,
            "predicted_expense": <total for entire period>,
            "predicted_net": <income - expense>,
            "income_trend": <percent change per month: +5 or -3>,
            "expense_trend": <percent change per month>,
            "confidence": <1-100>
        },
        "USD": { same structure },
        "RUB": { same structure }
    },
    "insights": "2-4 sentences explaining: (1) What key patterns you found, (2) Why you made these specific predictions, (3) What assumptions or recurring items you factored in, (4) Any warnings or caveats"
}

`)

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Only include currencies with actual historical data\n")
	fmt.Fprintf(&sb, "- Total amounts should be for the ENTIRE prediction period (%s months)\n", months)
	sb.WriteString("- If monthly income is 100k, and period is 12 months, predicted_income should be ~1.2M (adjusted for trends)\n")
	sb.WriteString("- Be specific in insights - mention actual numbers and patterns\n")

	return sb.String(), nil
}

func writeStatistics(sb *strings.Builder, summary *Summary) {
	currencies := make([]string, 0, len(summary.Currencies))
	for c := range summary.Currencies {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	for _, currency := range currencies {
		stats := summary.Currencies[currency].Statistics
		fmt.Fprintf(sb, "\n=== %s ANALYSIS ===\n", currency)

		if inc := stats.Income; inc != nil {
			sb.WriteString("INCOME:\n")
			writeFlow(sb, inc, currency)
			if len(inc.Recurring) > 0 {
				sb.WriteString("  - RECURRING INCOME DETECTED:\n")
				for _, rec := range inc.Recurring {
					fmt.Fprintf(sb, "    * ~%s %s (%d times, %s)\n", money(rec.Amount), currency, rec.Occurrences, rec.Frequency)
				}
			}
		}

		if exp := stats.Expense; exp != nil {
			sb.WriteString("\nEXPENSES:\n")
			writeFlow(sb, exp, currency)
			if len(exp.TopCategories) > 0 {
				sb.WriteString("  - TOP EXPENSE CATEGORIES:\n")
				for _, cat := range exp.TopCategories {
					fmt.Fprintf(sb, "    * %s: %s %s\n", cat.Category, money(cat.Amount), currency)
				}
			}
		}
	}
}

func writeFlow(sb *strings.Builder, s *FlowStats, currency string) {
	fmt.Fprintf(sb, "  - Monthly Average: %s %s\n", money(s.AverageMonthly), currency)
	fmt.Fprintf(sb, "  - Recent 3-month Avg: %s %s\n", money(s.Recent3MoAvg), currency)
	fmt.Fprintf(sb, "  - Recent 6-month Avg: %s %s\n", money(s.Recent6MoAvg), currency)
	fmt.Fprintf(sb, "  - Trend: %s (%s%% per month)\n", s.Trend.Direction, percent(s.Trend.Percent))
	fmt.Fprintf(sb, "  - Range: %s to %s\n", money(s.MinMonth), money(s.MaxMonth))
}
