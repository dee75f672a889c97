package extract

// Summary is a per-currency sum over a batch of records.
type Summary struct {
	Currency string
	Total    float64
}

// Summarize folds a batch into one sum per distinct currency, in discovery
// order. Records without a currency are excluded; records without a resolved
// total contribute zero to their currency's sum. The input is never mutated.
func Summarize(records []Record) []Summary {
	sums := make(map[string]float64)
	var order []string
	for _, rec := range records {
		if rec.Currency == "" {
			continue
		}
		if _, seen := sums[rec.Currency]; !seen {
			order = append(order, rec.Currency)
		}
		if rec.Total != nil {
			sums[rec.Currency] += *rec.Total
		} else {
			sums[rec.Currency] += 0
		}
	}

	out := make([]Summary, 0, len(order))
	for _, cur := range order {
		out = append(out, Summary{Currency: cur, Total: sums[cur]})
	}
	return out
}

// TableRows builds the full export row set: data rows in processing order,
// one blank separator row, then one synthetic summary row per currency. The
// summary vendor cell carries a label combining the currency; all other
// summary fields stay blank except the summed total and the currency itself.
func TableRows(records []Record) []Row {
	rows := make([]Row, 0, len(records)+4)
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}

	summaries := Summarize(records)
	if len(summaries) == 0 {
		return rows
	}

	rows = append(rows, Row{}) // separator
	for _, s := range summaries {
		rows = append(rows, Row{
			Vendor:   "TOTALE " + s.Currency,
			Total:    formatAmount(s.Total),
			Currency: s.Currency,
		})
	}
	return rows
}
