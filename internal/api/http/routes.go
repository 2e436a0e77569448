package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *surf.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/spots", func(c *fiber.Ctx) error {
		spots, err := service.Spots(c.UserContext())
		if err != nil {
			return toHTTPError(err, "failed to fetch surf spots")
		}
		return c.JSON(spots)
	})

	v1.Get("/spots/nearby", func(c *fiber.Ctx) error {
		q, err := parseNearbyQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		hits, err := service.Nearby(c.UserContext(), q.center(), q.Radius)
		if err != nil {
			return toHTTPError(err, "failed to fetch nearby spots")
		}
		return c.JSON(hits)
	})

	v1.Get("/spots/:id", func(c *fiber.Ctx) error {
		id, err := spotID(c)
		if err != nil {
			return err
		}

		spot, err := service.Spot(c.UserContext(), id)
		if err != nil {
			return toHTTPError(err, "failed to fetch surf spot")
		}
		return c.JSON(spot)
	})

	v1.Post("/sessions", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sessionId": uuid.NewString()})
	})

	v1.Post("/preferences", func(c *fiber.Ctx) error {
		var req preferencesRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		saved, err := service.SavePreferences(c.UserContext(), req.toProfile())
		if err != nil {
			return toHTTPError(err, "failed to save preferences")
		}
		return c.JSON(saved)
	})

	v1.Get("/preferences/:sessionId", func(c *fiber.Ctx) error {
		prefs, err := service.Preferences(c.UserContext(), c.Params("sessionId"))
		if err != nil {
			return toHTTPError(err, "failed to fetch preferences")
		}
		return c.JSON(prefs)
	})

	v1.Get("/forecast/spot/:id", func(c *fiber.Ctx) error {
		id, err := spotID(c)
		if err != nil {
			return err
		}

		spot, series, err := service.ForecastFor(c.UserContext(), id)
		if err != nil {
			return toHTTPError(err, "failed to fetch forecast")
		}
		return c.JSON(fiber.Map{
			"spot":     spot,
			"forecast": series,
		})
	})

	v1.Post("/forecast/ranked", func(c *fiber.Ctx) error {
		var req rankedRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		ranked, prefs, err := service.RankForSession(c.UserContext(), req.toRankRequest())
		if err != nil {
			return toHTTPError(err, "failed to get ranked spots")
		}
		if len(ranked) == 0 {
			return c.JSON(fiber.Map{
				"rankedSpots": ranked,
				"message":     "no surf spots found in the specified area",
			})
		}

		return c.JSON(fiber.Map{
			"rankedSpots": ranked,
			"userPreferences": fiber.Map{
				"skillLevel":      prefs.SkillLevel,
				"waveHeightRange": []float64{prefs.MinWaveHeight, prefs.MaxWaveHeight},
				"maxWindSpeed":    prefs.MaxWindSpeed,
				"maxDistance":     prefs.MaxDistanceKm,
			},
		})
	})

	v1.Post("/forecast/conditions", func(c *fiber.Ctx) error {
		var req conditionsRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		conditions, err := service.CurrentConditions(c.UserContext(), req.SpotIDs)
		if err != nil {
			return toHTTPError(err, "failed to fetch conditions")
		}
		return c.JSON(fiber.Map{"conditions": conditions})
	})
}

// ErrorHandler renders every error as a JSON body.
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

// toHTTPError maps core errors to status codes. Unexpected errors are reported
// with a generic message.
func toHTTPError(err error, fallback string) error {
	switch {
	case errors.Is(err, surf.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, surf.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

func bindBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func spotID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "spot id must be a positive integer")
	}
	return id, nil
}

// nearbyQuery holds query parameters of the nearby endpoint.
type nearbyQuery struct {
	Lat    float64 `validate:"gte=-90,lte=90"`
	Lng    float64 `validate:"gte=-180,lte=180"`
	Radius float64 `validate:"gt=0"`
}

func (q nearbyQuery) center() geo.Coordinate {
	return geo.Coordinate{Lat: q.Lat, Lng: q.Lng}
}

func parseNearbyQuery(c *fiber.Ctx) (nearbyQuery, error) {
	q := nearbyQuery{Radius: surf.DefaultRadiusKm}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return q, errors.New("latitude and longitude are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("invalid latitude")
	}
	if q.Lng, err = strconv.ParseFloat(lngStr, 64); err != nil {
		return q, errors.New("invalid longitude")
	}
	if r := c.Query("radius"); r != "" {
		if q.Radius, err = strconv.ParseFloat(r, 64); err != nil {
			return q, errors.New("invalid radius")
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// preferencesRequest is the body of the preferences upsert.
type preferencesRequest struct {
	SessionID     string   `json:"sessionId" validate:"required"`
	SkillLevel    string   `json:"skillLevel" validate:"required"`
	MinWaveHeight float64  `json:"minWaveHeight"`
	MaxWaveHeight float64  `json:"maxWaveHeight"`
	MaxWindSpeed  float64  `json:"maxWindSpeed"`
	LocationLat   *float64 `json:"locationLat" validate:"required_with=LocationLng"`
	LocationLng   *float64 `json:"locationLng" validate:"required_with=LocationLat"`
	MaxDistanceKm float64  `json:"maxDistanceKm"`
}

func (r preferencesRequest) toProfile() surf.PreferenceProfile {
	p := surf.PreferenceProfile{
		SessionID:     r.SessionID,
		SkillLevel:    surf.Level(strings.ToLower(strings.TrimSpace(r.SkillLevel))),
		MinWaveHeight: r.MinWaveHeight,
		MaxWaveHeight: r.MaxWaveHeight,
		MaxWindSpeed:  r.MaxWindSpeed,
		MaxDistanceKm: r.MaxDistanceKm,
	}
	if p.MaxDistanceKm == 0 {
		p.MaxDistanceKm = surf.DefaultRadiusKm
	}
	if r.LocationLat != nil && r.LocationLng != nil {
		p.Home = &geo.Coordinate{Lat: *r.LocationLat, Lng: *r.LocationLng}
	}
	return p
}

// rankedRequest is the body of the ranked forecast endpoint.
type rankedRequest struct {
	SessionID string   `json:"sessionId" validate:"required"`
	Lat       *float64 `json:"lat" validate:"required_with=Lng"`
	Lng       *float64 `json:"lng" validate:"required_with=Lat"`
	Radius    float64  `json:"radius" validate:"gte=0"`
}

func (r rankedRequest) toRankRequest() surf.RankRequest {
	req := surf.RankRequest{SessionID: r.SessionID, RadiusKm: r.Radius}
	if r.Lat != nil && r.Lng != nil {
		req.Origin = &geo.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
	}
	return req
}

// conditionsRequest is the body of the batch conditions endpoint.
type conditionsRequest struct {
	SpotIDs []int64 `json:"spotIds" validate:"required,min=1"`
}
