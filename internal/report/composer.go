package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/pricewatch/internal/model"
)

// Notification text fragments.
const (
	notificationHeader = "📊 *GPU Price Update*"
	successLabel       = "✅ Success"
	failedLabel        = "⚠️ Failed"
)

// Compose builds the run report and notification text from outcomes.
// The outcomes slice is copied, so later changes by the caller do not
// affect the returned report.
func Compose(outcomes []model.ProductOutcome, rates model.ExchangeRates, updatedAt time.Time) (*model.RunReport, string) {
	products := make([]model.ProductOutcome, len(outcomes))
	copy(products, outcomes)

	report := &model.RunReport{
		LastUpdate:   updatedAt,
		ExchangeRate: rates,
		Products:     products,
	}
	return report, NotificationText(report)
}

// NotificationText formats the summary message sent after a run.
//
//	📊 *GPU Price Update*
//
//	✅ Success: 4/6
//
//	• RTX 4090: ¥12999
//	...
//
//	⚠️ Failed: RTX 4080, RX 7900 XTX
//
// The failed line is omitted when every product succeeded.
func NotificationText(report *model.RunReport) string {
	var sb strings.Builder

	sb.WriteString(notificationHeader)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s: %d/%d\n\n", successLabel, report.SuccessCount(), report.Total())

	lines := make([]string, 0, report.SuccessCount())
	for _, outcome := range report.Succeeded() {
		lines = append(lines, fmt.Sprintf("• %s: ¥%d", outcome.Name, outcome.PriceCNY))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	if failed := report.FailedNames(); len(failed) > 0 {
		fmt.Fprintf(&sb, "\n\n%s: %s", failedLabel, strings.Join(failed, ", "))
	}

	return sb.String()
}
