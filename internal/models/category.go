package models

// CategoryColor is a palette entry. The style tokens are opaque to the
// categorization logic; only ID identifies the color.
type CategoryColor struct {
	ID         string `json:"id" yaml:"id"`
	Background string `json:"bg" yaml:"bg"`
	Text       string `json:"text" yaml:"text"`
	Border     string `json:"border" yaml:"border"`
	Fill       string `json:"fill" yaml:"fill"`
}

// CategoryConfig is a registered category and its display color.
type CategoryConfig struct {
	Name  string        `json:"name" yaml:"name"`
	Color CategoryColor `json:"color" yaml:"color"`
}

func paletteColor(id string) CategoryColor {
	return CategoryColor{
		ID:         id,
		Background: "bg-" + id + "-100",
		Text:       "text-" + id + "-700",
		Border:     "border-" + id + "-200",
		Fill:       "bg-" + id + "-500",
	}
}

// paletteOrder fixes the order in which unused colors are handed out.
var paletteOrder = []string{
	"emerald", "green", "lime", "teal", "cyan", "sky", "blue", "indigo",
	"violet", "purple", "fuchsia", "pink", "rose", "red", "orange", "amber",
	"yellow", "slate", "gray", "zinc", "neutral", "stone",
}

// FallbackColor styles categories that are not in the registry, such as the
// target of a rule whose category was never registered.
var FallbackColor = CategoryColor{
	ID:         "fallback",
	Background: "bg-slate-100",
	Text:       "text-slate-700",
	Border:     "border-slate-200",
	Fill:       "bg-slate-400",
}

// Palette returns the fixed color palette in assignment order.
func Palette() []CategoryColor {
	colors := make([]CategoryColor, len(paletteOrder))
	for i, id := range paletteOrder {
		colors[i] = paletteColor(id)
	}
	return colors
}

// PaletteColor looks up a palette entry by id.
func PaletteColor(id string) (CategoryColor, bool) {
	for _, candidate := range paletteOrder {
		if candidate == id {
			return paletteColor(id), true
		}
	}
	return CategoryColor{}, false
}

// Default category names.
const (
	CategoryGroceries      = "Groceries"
	CategoryDining         = "Dining"
	CategoryGas            = "Gas"
	CategoryTransportation = "Transportation"
	CategoryTravel         = "Travel"
	CategoryInternet       = "Internet"
	CategoryCellphone      = "Cellphone"
	CategoryOnlineServices = "Online Services"
	CategoryUtilities      = "Utilities"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryDonation       = "Donation"
	CategoryBusiness       = "Business"
	CategoryOther          = "Other"
)

// DefaultCategoryConfigs returns the seed categories of a new session.
func DefaultCategoryConfigs() []CategoryConfig {
	return []CategoryConfig{
		// Food & living
		{Name: CategoryGroceries, Color: paletteColor("emerald")},
		{Name: CategoryDining, Color: paletteColor("orange")},

		// Transit & travel
		{Name: CategoryGas, Color: paletteColor("amber")},
		{Name: CategoryTransportation, Color: paletteColor("yellow")},
		{Name: CategoryTravel, Color: paletteColor("cyan")},

		// Tech & utilities
		{Name: CategoryInternet, Color: paletteColor("sky")},
		{Name: CategoryCellphone, Color: paletteColor("blue")},
		{Name: CategoryOnlineServices, Color: paletteColor("indigo")},
		{Name: CategoryUtilities, Color: paletteColor("teal")},

		// Lifestyle
		{Name: CategoryShopping, Color: paletteColor("fuchsia")},
		{Name: CategoryEntertainment, Color: paletteColor("purple")},
		{Name: CategoryDonation, Color: paletteColor("rose")},

		// Misc & work
		{Name: CategoryBusiness, Color: paletteColor("slate")},
		{Name: CategoryOther, Color: paletteColor("stone")},
	}
}
