package assistant

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-assistant/internal/units"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// errNeedPlace is the LocationUnknown case where no place was mentioned at all.
var errNeedPlace = fmt.Errorf("%w: no place given", ErrLocationUnknown)

// unavailableError names the piece of data the snapshot is missing.
type unavailableError struct {
	what  string
	place string
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("%v: %s for %s", ErrDataUnavailable, e.what, e.place)
}

func (e *unavailableError) Unwrap() error {
	return ErrDataUnavailable
}

// Synthesize answers intent from snap for the place called placeName. It
// always returns a non-empty sentence; missing data is stated, never invented.
func Synthesize(intent Intent, snap weather.Snapshot, placeName string, f units.Formatter, now time.Time) string {
	text, err := answer(intent, snap, placeName, f, now)
	if err != nil {
		return Clarify(err, placeName)
	}
	return text
}

func answer(intent Intent, snap weather.Snapshot, place string, f units.Formatter, now time.Time) (string, error) {
	tomorrow := snap.Now(now).AddDate(0, 0, 1).Format("2006-01-02")

	switch {
	case intent.Topic == TopicRain && intent.Timeframe == TimeframeTomorrow:
		idx := weather.FindDailyByDate(snap.Daily, tomorrow)
		if idx < 0 {
			return "", &unavailableError{what: "tomorrow's precipitation data", place: place}
		}
		if sum := snap.Daily[idx].PrecipitationSumMm; sum > 0 {
			return fmt.Sprintf("Yes, %s is expected to have precipitation tomorrow (~%s). Bring an umbrella.",
				place, precipAmount(sum, f)), nil
		}
		return fmt.Sprintf("No, the forecast for %s shows little to no precipitation tomorrow.", place), nil

	case intent.Topic == TopicRain:
		code := codeString(snap.Current.Code)
		if weather.IsRainLike(snap.Current.Code) {
			return fmt.Sprintf("It looks like it's raining right now in %s (weather code %s).", place, code), nil
		}
		return fmt.Sprintf("No rain right now in %s (weather code %s).", place, code), nil

	case intent.Topic == TopicTemperature && intent.Timeframe == TimeframeTomorrow:
		if idx := weather.FindDailyByDate(snap.Daily, tomorrow); idx >= 0 {
			d := snap.Daily[idx]
			return fmt.Sprintf("Tomorrow in %s the temperature is expected between %s and %s.",
				place, f.Temperature(d.TempMinC), f.Temperature(d.TempMaxC)), nil
		}
		// No daily entry for tomorrow: answer with current conditions instead.
	}

	c := snap.Current
	return fmt.Sprintf("Right now in %s: %s, %s (%s wind).",
		place, weather.Classify(c.Code).Summary(), f.Temperature(c.TemperatureC), f.Wind(c.WindKmh)), nil
}

// precipAmount always states millimetres; imperial adds the inch value.
func precipAmount(mm float64, f units.Formatter) string {
	metric := units.FormatPrecip(mm, units.Metric)
	if f.System == units.Imperial {
		return metric + " / " + f.Precip(mm)
	}
	return metric
}

func codeString(code *int) string {
	if code == nil {
		return "unknown"
	}
	return strconv.Itoa(*code)
}

// Clarify renders a pipeline error as the message shown to the user.
// query is the place phrase involved, if any.
func Clarify(err error, query string) string {
	var unavailable *unavailableError
	switch {
	case errors.Is(err, errNeedPlace):
		return "Where should I check the weather? Try: 'Will it rain tomorrow in Lagos?'"
	case errors.Is(err, ErrLocationUnknown):
		return "I don't know your saved location yet. Please tell me a place (e.g. 'in Lagos')."
	case errors.Is(err, ErrPlaceNotFound):
		return fmt.Sprintf("I couldn't find %q. Try a different place name.", cases.Title(language.English).String(query))
	case errors.As(err, &unavailable):
		return fmt.Sprintf("I don't have %s for %s.", unavailable.what, unavailable.place)
	case errors.Is(err, ErrDataUnavailable):
		return fmt.Sprintf("I don't have that data for %s.", query)
	default:
		return "Sorry, something went wrong while I was fetching the weather."
	}
}
