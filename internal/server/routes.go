package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"nutriplan/internal/planner"
)

var startTime = time.Now()

// RegisterRoutes configures middleware and the API surface.
func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", s.healthHandler)

	api := e.Group("/api")
	api.POST("/plans", s.generatePlanHandler)
	api.GET("/plans/:id", s.getPlanHandler)
	api.POST("/alternatives", s.generateAlternativesHandler)
	api.POST("/alternatives/batch", s.generateAlternativesBatchHandler)

	return e
}

// generatePlanHandler runs the weekly-plan pipeline and stores the result.
// The pipeline always yields a shape-valid plan, so the only failure mode
// here is a bad request body or a store error.
func (s *Server) generatePlanHandler(c echo.Context) error {
	var req planner.GenerationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plan := s.planner.GenerateWeeklyPlan(c.Request().Context(), req)

	id, err := s.store.SaveWeeklyPlan(c.Request().Context(), req, plan)
	if err != nil {
		// The plan itself is still usable; log and return it without an id.
		log.Error().Err(err).Msg("Failed to persist generated plan")
		return c.JSON(http.StatusOK, echo.Map{"plan": plan})
	}

	return c.JSON(http.StatusOK, echo.Map{"plan_id": id, "plan": plan})
}

func (s *Server) getPlanHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	stored, err := s.store.GetWeeklyPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "plan not found")
	}
	return c.JSON(http.StatusOK, stored)
}

func (s *Server) generateAlternativesHandler(c echo.Context) error {
	var req planner.AlternativesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	alts := s.planner.GenerateAlternatives(c.Request().Context(), req)
	return c.JSON(http.StatusOK, echo.Map{"alternatives": alts})
}

// generateAlternativesBatchHandler generates substitute pairs for several
// foods in one call; the generations are independent and run in parallel.
func (s *Server) generateAlternativesBatchHandler(c echo.Context) error {
	var reqs []planner.AlternativesRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty batch")
	}

	results := s.planner.GenerateAlternativesBatch(c.Request().Context(), reqs)
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// healthHandler reports store health plus a host snapshot.
func (s *Server) healthHandler(c echo.Context) error {
	report := echo.Map{
		"uptime":   time.Since(startTime).Round(time.Second).String(),
		"database": s.store.Health(c.Request().Context()),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		report["memory_used_percent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report["cpu_percent"] = percents[0]
	}
	if info, err := host.Info(); err == nil {
		report["hostname"] = info.Hostname
	}

	return c.JSON(http.StatusOK, report)
}
