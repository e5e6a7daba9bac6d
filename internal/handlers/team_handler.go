package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

type TeamHdl interface {
	ListMembers(c *gin.Context)
	CreateMember(c *gin.Context)
	UpdateMember(c *gin.Context)
	DeleteMember(c *gin.Context)
}

type TeamHandler struct {
	DatabaseManager managers.DatabaseMgr
	Validator       *utils.Validator
}

func NewTeamHandler(databaseManager managers.DatabaseMgr) TeamHdl {
	return &TeamHandler{
		DatabaseManager: databaseManager,
		Validator:       utils.GetValidator(),
	}
}

// ListMembers returns all team members ordered by rank for the public team page.
func (handler *TeamHandler) ListMembers(c *gin.Context) {
	queryString := "SELECT member_id, name, title, bio, email, rank FROM team_members ORDER BY rank ASC, name ASC"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}
	defer rows.Close()

	members := make([]*schemas.TeamMemberDTO, 0)
	for rows.Next() {
		member := &schemas.TeamMember{}
		if err := rows.Scan(&member.ID, &member.Name, &member.Title, &member.Bio, &member.Email, &member.Rank); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		members = append(members, memberToDto(member))
	}

	utils.WriteAndLogResponse(c, members, http.StatusOK)
}

// CreateMember adds a new team member.
func (handler *TeamHandler) CreateMember(c *gin.Context) {
	memberRequest := &schemas.TeamMemberRequest{}
	if err := c.ShouldBindJSON(memberRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(memberRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	member := &schemas.TeamMember{}
	queryString := "INSERT INTO team_members (member_id, name, title, bio, email, rank, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING member_id, name, title, bio, email, rank"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, uuid.New(), memberRequest.Name, memberRequest.Title, memberRequest.Bio, memberRequest.Email, memberRequest.Rank, time.Now())
	if err := row.Scan(&member.ID, &member.Name, &member.Title, &member.Bio, &member.Email, &member.Rank); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	utils.WriteAndLogResponse(c, memberToDto(member), http.StatusCreated)
}

// UpdateMember updates an existing team member.
func (handler *TeamHandler) UpdateMember(c *gin.Context) {
	memberId, err := uuid.Parse(c.Param(utils.MemberIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	memberRequest := &schemas.TeamMemberRequest{}
	if err := c.ShouldBindJSON(memberRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(memberRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	member := &schemas.TeamMember{}
	queryString := "UPDATE team_members SET name = $1, title = $2, bio = $3, email = $4, rank = $5, updated_at = $6 WHERE member_id = $7 RETURNING member_id, name, title, bio, email, rank"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, memberRequest.Name, memberRequest.Title, memberRequest.Bio, memberRequest.Email, memberRequest.Rank, time.Now(), memberId)
	if err := row.Scan(&member.ID, &member.Name, &member.Title, &member.Bio, &member.Email, &member.Rank); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.NotFoundError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	utils.WriteAndLogResponse(c, memberToDto(member), http.StatusOK)
}

// DeleteMember removes a team member.
func (handler *TeamHandler) DeleteMember(c *gin.Context) {
	memberId, err := uuid.Parse(c.Param(utils.MemberIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	queryString := "DELETE FROM team_members WHERE member_id = $1"
	tag, err := handler.DatabaseManager.GetPool().Exec(c, queryString, memberId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		utils.WriteAndLogError(c, schemas.NotFoundError, errors.New("team member not found"))
		return
	}

	c.Status(http.StatusNoContent)
}

func memberToDto(member *schemas.TeamMember) *schemas.TeamMemberDTO {
	return &schemas.TeamMemberDTO{
		MemberID: member.ID.String(),
		Name:     member.Name,
		Title:    member.Title,
		Bio:      member.Bio,
		Email:    member.Email,
		Rank:     member.Rank,
	}
}
