package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type upsertRoomRequest struct {
	Name            string `json:"name"`
	RoomInstruction string `json:"roomInstruction"`
}

func (s *APIV1Service) listRooms(c echo.Context) error {
	rooms, err := s.Store.Rooms(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

func (s *APIV1Service) createRoom(c echo.Context) error {
	var req upsertRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room, err := s.Store.CreateRoom(c.Request().Context(), req.Name, req.RoomInstruction)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, room)
}

func (s *APIV1Service) updateRoom(c echo.Context) error {
	var req upsertRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room, err := s.Store.UpdateRoom(c.Request().Context(), c.Param("id"), req.Name, req.RoomInstruction)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}

func (s *APIV1Service) deleteRoom(c echo.Context) error {
	if err := s.Session.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) switchRoom(c echo.Context) error {
	room, err := s.Session.SwitchRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}
