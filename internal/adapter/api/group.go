package api

import (
	groupservice "github.com/burenotti/hoops_backend/internal/app/group"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountGroups() {
	groupsGroup := s.handler.Group("/groups", s.LoginRequired())

	groupsGroup.GET("/list", s.GetGroupsList)
	groupsGroup.POST("", s.CreateGroup)
	groupsGroup.GET("/:group_id", s.GetGroup)
	groupsGroup.GET("/:group_id/members", s.GetGroupMembers)
	groupsGroup.PUT("/:group_id/liaison", s.AssignLiaison)
}

func (s *Server) getGroupUoW() *unitofwork.UnitOfWork[*groupservice.AtomicContext] {
	return unitofwork.New[*groupservice.AtomicContext](
		s.db,
		groupservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Group struct {
	GroupID     string    `json:"group_id"`
	CoachID     string    `json:"coach_id"`
	LiaisonID   *string   `json:"liaison_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Season      string    `json:"season,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func groupResponse(g *group.Group) Group {
	resp := Group{
		GroupID:     string(g.GroupID),
		CoachID:     string(g.CoachID),
		Name:        g.Name,
		Description: g.Description,
		Season:      g.Season,
		CreatedAt:   g.CreatedAt,
	}
	if g.LiaisonID != nil {
		resp.LiaisonID = lo.ToPtr(string(*g.LiaisonID))
	}
	return resp
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Season      string `json:"season" validate:"max=32"`
}

func (s *Server) CreateGroup(c echo.Context) error {
	var req CreateGroupRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	coachID := group.CoachID(currentUser(c).UserID)
	g, err := s.groupService.CreateGroup(c.Request().Context(), s.getGroupUoW(), coachID, req.Name, req.Description, req.Season)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, groupResponse(g))
}

type GetGroupRequest struct {
	GroupID string `param:"group_id" validate:"required"`
}

func (s *Server) GetGroup(c echo.Context) error {
	var req GetGroupRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	g, err := s.groupService.GetByID(c.Request().Context(), s.getGroupUoW(), group.GroupID(req.GroupID))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, groupResponse(g))
}

type GetGroupMembersRequest struct {
	GroupID string `param:"group_id" validate:"required"`
	Limit   int    `query:"limit" validate:"gte=0,lte=1000"`
	Offset  int    `query:"offset" validate:"gte=0"`
}

type Member struct {
	AthleteID   int64  `json:"athlete_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	StudentCode string `json:"student_code"`
	Active      bool   `json:"active"`
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
}

func (s *Server) GetGroupMembers(c echo.Context) error {
	var req GetGroupMembersRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	members, err := s.groupService.GetMembers(ctx, s.getGroupUoW(), group.GroupID(req.GroupID), req.Limit, req.Offset)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, GetMembersResponse{
		Members: lo.Map(members, func(m *group.Member, _ int) Member {
			return Member{
				AthleteID:   m.AthleteID,
				FirstName:   m.FirstName,
				LastName:    m.LastName,
				StudentCode: m.StudentCode,
				Active:      m.Active,
			}
		}),
	})
}

type GetGroupsListResponse struct {
	Groups []Group `json:"groups"`
}

func (s *Server) GetGroupsList(c echo.Context) error {
	var req PageRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	list, err := s.groupService.GetUserGroups(ctx, s.getGroupUoW(), currentUser(c).UserID, req.Limit, req.Offset)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, GetGroupsListResponse{
		Groups: lo.Map(list, func(item *group.Group, _ int) Group {
			return groupResponse(item)
		}),
	})
}

type AssignLiaisonRequest struct {
	GroupID   string `param:"group_id" validate:"required"`
	LiaisonID string `json:"liaison_id" validate:"required"`
}

func (s *Server) AssignLiaison(c echo.Context) error {
	var req AssignLiaisonRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	g, err := s.groupService.AssignLiaison(ctx, s.getGroupUoW(), group.GroupID(req.GroupID), group.LiaisonID(req.LiaisonID))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, groupResponse(g))
}
