package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-assistant/internal/assistant"
	"github.com/i474232898/weather-assistant/internal/dashboard"
	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/units"
	"github.com/i474232898/weather-assistant/internal/weather"
)

var validate = validator.New()

// Options tunes the HTTP surface. Zero values fall back to defaults.
type Options struct {
	SearchCount  int
	ReplyTimeout time.Duration
	Clock        func() time.Time
}

type handler struct {
	service  *weather.Service
	sessions *store.SessionStore
	resolver *assistant.Resolver
	opts     Options
}

// ErrorHandler renders every error as the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, sessions *store.SessionStore, geocoder weather.Geocoder, opts Options) {
	if opts.SearchCount <= 0 {
		opts.SearchCount = 5
	}
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = assistant.DefaultReplyTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	h := &handler{
		service:  service,
		sessions: sessions,
		resolver: assistant.NewResolver(geocoder),
		opts:     opts,
	}

	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-assistant",
		})
	})

	v1.Get("/weather/current", h.current)
	v1.Get("/weather/daily", h.daily)
	v1.Get("/weather/hourly", h.hourly)

	v1.Get("/locations/search", h.search)
	v1.Get("/location", h.getLocation)
	v1.Put("/location", h.putLocation)

	v1.Get("/units", h.getUnit)
	v1.Put("/units", h.putUnit)
	v1.Post("/units/toggle", h.toggleUnit)

	v1.Post("/chat/sessions", h.createSession)
	v1.Get("/chat/sessions/:id", h.getSession)
	v1.Delete("/chat/sessions/:id", h.deleteSession)
	v1.Post("/chat/sessions/:id/messages", h.postMessage)
}

// formatter picks the unit from the query, falling back to the preference.
func (h *handler) formatter(c *fiber.Ctx) (units.Formatter, error) {
	f := h.service.Preferences().Formatter()
	if q := c.Query("unit"); q != "" {
		unit, err := units.ParseSystem(q)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		f.System = unit
	}
	return f, nil
}

func (h *handler) latest() (weather.NamedLocation, weather.Snapshot, error) {
	loc, snap, err := h.service.Latest()
	switch {
	case err == nil:
		return loc, snap, nil
	case errors.Is(err, weather.ErrNoLocation):
		return loc, snap, fiber.NewError(fiber.StatusNotFound, "no location selected")
	default:
		return loc, snap, fiber.NewError(fiber.StatusServiceUnavailable, "unable to reach the weather service, check your connection")
	}
}

func (h *handler) current(c *fiber.Ctx) error {
	f, err := h.formatter(c)
	if err != nil {
		return err
	}
	loc, snap, err := h.latest()
	if err != nil {
		return err
	}
	return c.JSON(dashboard.BuildCurrent(loc, snap, f))
}

func (h *handler) daily(c *fiber.Ctx) error {
	f, err := h.formatter(c)
	if err != nil {
		return err
	}
	loc, snap, err := h.latest()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"location": loc.DisplayName(),
		"days":     dashboard.BuildDaily(snap, f, h.opts.Clock()),
	})
}

func (h *handler) hourly(c *fiber.Ctx) error {
	f, err := h.formatter(c)
	if err != nil {
		return err
	}
	_, snap, err := h.latest()
	if err != nil {
		return err
	}
	view, err := dashboard.BuildHourly(snap, c.Query("day"), f, h.opts.Clock())
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownDay) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(view)
}

// searchQuery holds query parameters for the location search endpoint.
type searchQuery struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1,max=10"`
}

func (h *handler) search(c *fiber.Ctx) error {
	q := searchQuery{
		Name:  c.Query("name"),
		Count: c.QueryInt("count", h.opts.SearchCount),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.Search(c.UserContext(), q.Name, q.Count)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "location search failed")
	}
	if results == nil {
		results = []weather.NamedLocation{}
	}
	return c.JSON(fiber.Map{"results": results})
}

func (h *handler) getLocation(c *fiber.Ctx) error {
	active := h.service.Preferences().Active
	if active == nil {
		return fiber.NewError(fiber.StatusNotFound, "no location selected")
	}
	return c.JSON(active)
}

func (h *handler) putLocation(c *fiber.Ctx) error {
	var loc weather.NamedLocation
	if err := c.BodyParser(&loc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(loc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.SelectLocation(c.UserContext(), loc); err != nil {
		if errors.Is(err, weather.ErrSuperseded) {
			return fiber.NewError(fiber.StatusConflict, "another location was selected meanwhile")
		}
		return fiber.NewError(fiber.StatusServiceUnavailable, "unable to reach the weather service, check your connection")
	}
	return c.JSON(loc)
}

type unitBody struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial"`
}

func (h *handler) getUnit(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"unit": h.service.Preferences().Unit})
}

func (h *handler) putUnit(c *fiber.Ctx) error {
	var body unitBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	h.service.SetUnit(units.System(body.Unit))
	return c.JSON(fiber.Map{"unit": body.Unit})
}

func (h *handler) toggleUnit(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"unit": h.service.ToggleUnit()})
}
