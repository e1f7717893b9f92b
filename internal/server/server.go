// Package server is a local implementation of the remote todo collection, so
// the client runs end to end without a third-party backend.
package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/todotui/internal/model"
)

// Server wires the echo router over a JSON-file store.
type Server struct {
	e     *echo.Echo
	store *fileStore
	log   zerolog.Logger
}

// New builds a server persisting to dataPath.
func New(dataPath string, logger zerolog.Logger) (*Server, error) {
	store, err := newFileStore(dataPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		e:     echo.New(),
		store: store,
		log:   logger,
	}
	s.e.HideBanner = true
	s.e.Use(middleware.Logger())
	s.e.Use(middleware.Recover())

	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.e.GET("/todos", s.handleList)
	s.e.POST("/todos", s.handleCreate)
	s.e.PATCH("/todos/:id", s.handleUpdate)
	s.e.PUT("/todos/:id", s.handleUpdate)
	s.e.DELETE("/todos/:id", s.handleDelete)

	return s, nil
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("server starting")
	return s.e.Start(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.e }

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}

func (s *Server) handleList(c echo.Context) error {
	userID := 0
	if raw := c.QueryParam("userId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "userId must be a number")
		}
		userID = n
	}
	return c.JSON(http.StatusOK, s.store.list(userID))
}

func (s *Server) handleCreate(c echo.Context) error {
	var in model.Todo
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "malformed body")
	}
	if strings.TrimSpace(in.Title) == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}
	if in.UserID <= 0 {
		return fail(c, http.StatusBadRequest, "userId is required")
	}
	created, err := s.store.create(in)
	if err != nil {
		s.log.Error().Err(err).Msg("create failed")
		return fail(c, http.StatusInternalServerError, "could not persist todo")
	}
	s.log.Info().Int("id", created.ID).Int("userId", created.UserID).Msg("todo created")
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdate(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "id must be a number")
	}
	var p patch
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "malformed body")
	}
	updated, found, err := s.store.update(id, p)
	if err != nil {
		s.log.Error().Err(err).Int("id", id).Msg("update failed")
		return fail(c, http.StatusInternalServerError, "could not persist todo")
	}
	if !found {
		return fail(c, http.StatusNotFound, "no such todo")
	}
	s.log.Info().Int("id", id).Msg("todo updated")
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "id must be a number")
	}
	found, err := s.store.remove(id)
	if err != nil {
		s.log.Error().Err(err).Int("id", id).Msg("delete failed")
		return fail(c, http.StatusInternalServerError, "could not persist todo")
	}
	if !found {
		return fail(c, http.StatusNotFound, "no such todo")
	}
	s.log.Info().Int("id", id).Msg("todo deleted")
	return c.JSON(http.StatusOK, map[string]string{})
}
