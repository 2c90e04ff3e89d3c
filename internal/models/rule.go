package models

// KeywordRule maps a description substring to a category.
// Rules are evaluated in list order; the first match wins.
type KeywordRule struct {
	ID       string `json:"id" yaml:"id" csv:"id"`
	Keyword  string `json:"keyword" yaml:"keyword" csv:"keyword"`
	Category string `json:"category" yaml:"category" csv:"category"`
}

// DefaultRules returns the rules a new session starts with.
func DefaultRules() []KeywordRule {
	return []KeywordRule{
		{ID: "1", Keyword: "'S NF", Category: CategoryGroceries},
		{ID: "2", Keyword: "ESSO", Category: CategoryGas},
		{ID: "3", Keyword: "COSTCO GAS", Category: CategoryGas},
		{ID: "4", Keyword: "NETFLIX", Category: CategoryEntertainment},
		{ID: "5", Keyword: "407ETR", Category: CategoryTransportation},
		{ID: "6", Keyword: "CORP CANADA", Category: CategoryBusiness},
		{ID: "7", Keyword: "ROGERS ******2665", Category: CategoryCellphone},
		{ID: "8", Keyword: "ROGERS ******8017", Category: CategoryInternet},
		{ID: "9", Keyword: "WWW.COSTCO CA", Category: CategoryShopping},
	}
}
