// Package server exposes the validation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	validate "github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/optimode/deliverkit"
)

// Version reported by the health and root endpoints.
const Version = "1.0.0"

// Options configures the HTTP layer, not the pipeline.
type Options struct {
	// AllowedOrigins for CORS, comma separated. Empty means "*".
	AllowedOrigins string
	// RequestTimeout bounds one request's validation work. Default: 30s.
	RequestTimeout time.Duration
}

// Server routes HTTP requests into a shared Validator.
type Server struct {
	validator *deliverkit.Validator
	logger    *logrus.Logger
	check     *validate.Validate
	opts      Options
}

// New builds the Fiber application around the given pipeline.
func New(v *deliverkit.Validator, logger *logrus.Logger, opts Options) *fiber.App {
	if opts.AllowedOrigins == "" {
		opts.AllowedOrigins = "*"
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		validator: v,
		logger:    logger,
		check:     validate.New(),
		opts:      opts,
	}

	app := fiber.New(fiber.Config{
		AppName:               "deliverkit " + Version,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: opts.AllowedOrigins}))
	app.Use(s.requestID)

	app.Get("/", s.root)
	api := app.Group("/api/v1")
	api.Get("/health", s.health)
	api.Post("/validate", s.validateOne)
	api.Post("/validate/bulk", s.validateBulk)

	return app
}

// requestID tags every request with a sortable unique id for log
// correlation and echoes it back to the client.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = ulid.Make().String()
	}
	c.Locals("request_id", id)
	c.Set("X-Request-ID", id)
	return c.Next()
}

func (s *Server) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Email Deliverability Checker API",
		"version": Version,
		"health":  "/api/v1/health",
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type validateRequest struct {
	Email     string `json:"email" validate:"required"`
	CheckSMTP bool   `json:"check_smtp"`
}

type bulkRequest struct {
	Emails    []string `json:"emails" validate:"required,min=1,max=100,dive,required"`
	CheckSMTP bool     `json:"check_smtp"`
}

func (s *Server) validateOne(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.check.Struct(req); err != nil {
		return badRequest(c, requestError(err))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
	defer cancel()

	result := s.validator.Validate(ctx, req.Email, req.CheckSMTP)
	s.logger.WithFields(logrus.Fields{
		"request_id": c.Locals("request_id"),
		"domain":     result.Domain,
		"valid":      result.IsValid,
		"score":      result.DeliverabilityScore,
		"smtp":       result.SMTPCheckPerformed,
		"ms":         result.ProcessingTimeMS,
	}).Info("validated address")

	return c.JSON(result)
}

func (s *Server) validateBulk(c *fiber.Ctx) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.check.Struct(req); err != nil {
		return badRequest(c, requestError(err))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
	defer cancel()

	batch, err := s.validator.ValidateBatch(ctx, req.Emails, req.CheckSMTP)
	switch {
	case errors.Is(err, deliverkit.ErrBatchTooLarge):
		return badRequest(c, "maximum 100 emails allowed per bulk request")
	case errors.Is(err, deliverkit.ErrBatchEmpty):
		return badRequest(c, "at least one email is required")
	case err != nil:
		s.logger.WithError(err).WithField("request_id", c.Locals("request_id")).
			Error("bulk validation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "bulk validation failed",
		})
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": c.Locals("request_id"),
		"count":      batch.TotalChecked,
		"ms":         batch.ProcessingTimeMS,
	}).Info("validated batch")

	return c.JSON(batch)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// requestError flattens validator.v10 field errors into one message.
func requestError(err error) string {
	var fields validate.ValidationErrors
	if !errors.As(err, &fields) {
		return "invalid request"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(f.Field())+" is required")
		case "max":
			parts = append(parts, strings.ToLower(f.Field())+" exceeds the maximum of "+f.Param())
		case "min":
			parts = append(parts, strings.ToLower(f.Field())+" needs at least "+f.Param()+" items")
		default:
			parts = append(parts, strings.ToLower(f.Field())+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
