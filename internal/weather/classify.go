package weather

// Category is a semantic weather classification derived from a WMO weather code.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryPartlyCloudy Category = "partly-cloudy"
	CategoryOvercast     Category = "overcast"
	CategoryFog          Category = "fog"
	CategoryRain         Category = "rain"
	CategorySnow         Category = "snow"
	CategoryStorm        Category = "storm"
)

// Classify maps a weather code to its category. It is total: a nil code and
// any code outside the known ranges are treated as clear.
func Classify(code *int) Category {
	if code == nil {
		return CategoryClear
	}
	c := *code
	switch {
	case c == 0:
		return CategoryClear
	case c == 1 || c == 2:
		return CategoryPartlyCloudy
	case c == 3:
		return CategoryOvercast
	case c >= 45 && c <= 48:
		return CategoryFog
	case (c >= 51 && c <= 67) || (c >= 80 && c <= 82):
		return CategoryRain
	case (c >= 71 && c <= 77) || (c >= 85 && c <= 86):
		return CategorySnow
	case c >= 95:
		return CategoryStorm
	default:
		return CategoryClear
	}
}

// IsRainLike reports whether the code means rain is falling. Thunderstorm
// code 95 counts as rain-bearing, so this is wider than CategoryRain.
func IsRainLike(code *int) bool {
	if code == nil {
		return false
	}
	c := *code
	return (c >= 51 && c <= 67) || (c >= 80 && c <= 82) || c == 95
}

// Summary is the phrase used when describing the category in a sentence.
func (c Category) Summary() string {
	switch c {
	case CategoryPartlyCloudy:
		return "partly cloudy"
	case CategoryOvercast:
		return "overcast"
	case CategoryFog:
		return "foggy"
	case CategoryRain:
		return "rainy"
	case CategorySnow:
		return "snowy"
	case CategoryStorm:
		return "stormy"
	default:
		return "clear skies"
	}
}

// Icon returns the dashboard icon key. Overcast shares the partly-cloudy icon.
func (c Category) Icon() string {
	switch c {
	case CategoryPartlyCloudy, CategoryOvercast:
		return "partly-cloudy"
	case CategoryFog:
		return "fog"
	case CategoryRain:
		return "rain"
	case CategorySnow:
		return "snow"
	case CategoryStorm:
		return "storm"
	default:
		return "sunny"
	}
}
