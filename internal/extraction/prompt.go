package extraction

import (
	"strings"

	"fjacquet/statement-scanner/internal/models"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You are a precise data extraction engine. " +
	"You extract financial data from PDF statements accurately. " +
	"Rely on the text layer of the PDF for exact extraction."

const userPrompt = "Analyze this credit card statement. " +
	"Extract all transactions into a structured JSON format. " +
	"Infer the category based on the merchant name. " +
	"Ensure amounts are numbers (positive for spend)."

// Field descriptions of the structured response.
const (
	descDate           = "Transaction date in Format MMM DD (e.g. Jan. 10)"
	descDescription    = "Merchant name or transaction description"
	descCardLast4      = "Last 4 digits of the card used, if visible. Empty string if not."
	descAmount         = "Transaction amount. Positive for expenses/purchases. Negative for payments/refunds."
	descStartDate      = "Start date of the statement period (e.g., Dec. 26)"
	descEndDate        = "End date of the statement period (e.g., Jan. 19)"
	descStatementTotal = "The 'Total New Charges', 'Total Purchases', or similar total amount listed " +
		"in the statement summary section. Do not include previous balance."
)

var (
	transactionRequired = []string{"date", "description", "amount", "category"}
	resultRequired      = []string{"transactions", "startDate", "endDate"}
)

func defaultCategoryNames() []string {
	configs := models.DefaultCategoryConfigs()
	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}
	return names
}

// categoryDescription lists the categories the service may assign.
func categoryDescription(categories []string) string {
	if len(categories) == 0 {
		categories = defaultCategoryNames()
	}
	return "Best fit category: " + strings.Join(categories, ", ")
}
