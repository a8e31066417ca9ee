package scheduler

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
)

// FormatCurrency renders a yen amount rounded to the whole unit, e.g. ¥3,500,000.
func FormatCurrency(amount float64) string {
	n := int64(math.Round(amount))
	p := message.NewPrinter(language.Japanese)
	if n < 0 {
		return "-¥" + p.Sprintf("%d", -n)
	}
	return "¥" + p.Sprintf("%d", n)
}

// FormatDate renders d for display in lang.
func FormatDate(d dates.Date, lang models.Language) string {
	if lang == models.LangEN {
		return d.Time().Format("Jan 2, 2006")
	}
	return fmt.Sprintf("%04d年%02d月%02d日", d.Year, int(d.Month), d.Day)
}
