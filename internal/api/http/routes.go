package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/dataset"
	"github.com/i474232898/climate-viewer/internal/export"
	"github.com/i474232898/climate-viewer/internal/render"
	"github.com/i474232898/climate-viewer/internal/viewer"
)

var validate = validator.New()

// Resolver produces yearly series.
type Resolver interface {
	Resolve(ctx context.Context, table climate.Table, q climate.Query) ([]climate.Point, error)
}

// ErrorHandler renders every error as a JSON body with its status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, resolver Resolver, sessions *viewer.Manager, charts render.Config) {
	h := &handlers{resolver: resolver, sessions: sessions, charts: charts}

	v1 := app.Group("/api/v1")

	v1.Get("/tables", h.tables)
	v1.Get("/series/:table", h.series)
	v1.Get("/series/:table/export.xlsx", h.exportXLSX)
	v1.Get("/chart/:table.:format", h.chart)

	s := v1.Group("/sessions")
	s.Post("/", h.createSession)
	s.Get("/:id", h.getSession)
	s.Put("/:id/chart", h.selectChart)
	s.Put("/:id/query", h.setBound)
	s.Get("/:id/chart.:format", h.sessionChart)
	s.Delete("/:id", h.deleteSession)
}

type handlers struct {
	resolver Resolver
	sessions *viewer.Manager
	charts   render.Config
}

// rangeQuery holds the optional year bounds of a series request.
type rangeQuery struct {
	From int `validate:"omitempty,gte=1,lte=9999"`
	To   int `validate:"omitempty,gte=1,lte=9999,gtefield=From"`
}

func parseRange(c *fiber.Ctx) (climate.Query, error) {
	q := rangeQuery{
		From: c.QueryInt("from", 0),
		To:   c.QueryInt("to", 0),
	}
	if err := validate.Struct(q); err != nil {
		return climate.Query{}, err
	}
	return climate.Query{From: q.From, To: q.To}, nil
}

func parseTable(c *fiber.Ctx) (climate.Table, error) {
	t, err := climate.ParseTable(c.Params("table"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return t, nil
}

// resolve runs a series request and maps pipeline failures onto statuses.
func (h *handlers) resolve(c *fiber.Ctx) (climate.Table, climate.Query, []climate.Point, error) {
	table, err := parseTable(c)
	if err != nil {
		return "", climate.Query{}, nil, err
	}
	q, err := parseRange(c)
	if err != nil {
		return "", climate.Query{}, nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	series, err := h.resolver.Resolve(c.UserContext(), table, q)
	if err != nil {
		return "", climate.Query{}, nil, statusFor(err)
	}
	return table, q, series, nil
}

func statusFor(err error) error {
	switch {
	case errors.Is(err, climate.ErrStoreUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "cache store unavailable")
	case errors.Is(err, dataset.ErrMalformedPayload), errors.Is(err, dataset.ErrUnexpectedStatus):
		return fiber.NewError(fiber.StatusBadGateway, "dataset unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "request cancelled")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve series")
	}
}

func (h *handlers) tables(c *fiber.Ctx) error {
	borders := h.sessions.Borders()
	return c.JSON(fiber.Map{
		"tables": climate.Tables,
		"from":   borders.From,
		"to":     borders.To,
		"years":  viewer.YearOptions(borders),
	})
}

func (h *handlers) series(c *fiber.Ctx) error {
	table, q, series, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"table":  table,
		"query":  q,
		"series": series,
	})
}

func (h *handlers) exportXLSX(c *fiber.Ctx) error {
	table, q, series, err := h.resolve(c)
	if err != nil {
		return err
	}
	data, err := export.SeriesXLSX(table, q, series)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, table))
	return c.Send(data)
}

func (h *handlers) chart(c *fiber.Ctx) error {
	format, err := render.ParseFormat(c.Params("format"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	table, _, series, err := h.resolve(c)
	if err != nil {
		return err
	}

	canvas := render.NewCanvas(h.charts.Defaults.Width, h.charts.Defaults.Height)
	h.charts.Render(canvas, table, series)
	return sendCanvas(c, canvas.Encode, format)
}

func sendCanvas(c *fiber.Ctx, encode func(w io.Writer, f render.Format) error, format render.Format) error {
	var buf bytes.Buffer
	if err := encode(&buf, format); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}

func (h *handlers) session(c *fiber.Ctx) (*viewer.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return s, nil
}

func (h *handlers) createSession(c *fiber.Ctx) error {
	s := h.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(s.Info())
}

func (h *handlers) getSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(s.Info())
}

// chartRequest is the body of the chart-type switch.
type chartRequest struct {
	Type string `json:"type" validate:"required,oneof=temperature precipitation"`
}

func (h *handlers) selectChart(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var req chartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.SelectChart(climate.Table(req.Type))
	return c.Status(fiber.StatusAccepted).JSON(s.Info())
}

// boundRequest is the body of a year selection.
type boundRequest struct {
	Name string `json:"name" validate:"required,oneof=from to"`
	Year int    `json:"year" validate:"required"`
}

func (h *handlers) setBound(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var req boundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := s.SetBound(req.Name, req.Year); err != nil {
		if errors.Is(err, viewer.ErrYearOutOfRange) || errors.Is(err, viewer.ErrUnknownBound) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(s.Info())
}

func (h *handlers) sessionChart(c *fiber.Ctx) error {
	format, err := render.ParseFormat(c.Params("format"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return sendCanvas(c, s.WriteChart, format)
}

func (h *handlers) deleteSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Delete(s.ID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
