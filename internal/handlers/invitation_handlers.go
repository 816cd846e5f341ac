package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type InvitationHandlers struct {
	invitationService services.InvitationService
}

func NewInvitationHandlers(invitationService services.InvitationService) *InvitationHandlers {
	return &InvitationHandlers{invitationService: invitationService}
}

// CreateInvitation godoc
//
//	@Summary	Invite a user by email
//	@Tags		invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.InvitationInput	true	"Email and role"
//	@Success	201		{object}	models.CreatedInvitation
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/invitations [post]
func (h *InvitationHandlers) CreateInvitation(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	var in models.InvitationInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	inv, err := h.invitationService.Create(c.Request().Context(), tenantID, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

// ListInvitations godoc
//
//	@Summary	List invitations
//	@Tags		invitations
//	@Produce	json
//	@Success	200	{object}	common.Page[models.Invitation]
//	@Security	BearerAuth
//	@Router		/invitations [get]
func (h *InvitationHandlers) ListInvitations(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.invitationService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// RevokeInvitation godoc
//
//	@Summary	Revoke a pending invitation
//	@Tags		invitations
//	@Param		id	path	string	true	"Invitation ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/invitations/{id} [delete]
func (h *InvitationHandlers) RevokeInvitation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	if err := h.invitationService.Revoke(c.Request().Context(), tenantID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PreviewInvitation godoc
//
//	@Summary	Show a pending invitation
//	@Tags		invitations
//	@Produce	json
//	@Param		token	path		string	true	"Invitation token"
//	@Success	200		{object}	models.InvitationPreview
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/invitations/accept/{token} [get]
func (h *InvitationHandlers) PreviewInvitation(c echo.Context) error {
	preview, err := h.invitationService.Preview(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, preview)
}

// AcceptInvitation godoc
//
//	@Summary	Accept an invitation and create the account
//	@Tags		invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.AcceptInvitationInput	true	"Token, name and password"
//	@Success	201		{object}	models.User
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/invitations/accept [post]
func (h *InvitationHandlers) AcceptInvitation(c echo.Context) error {
	var in models.AcceptInvitationInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	user, err := h.invitationService.Accept(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}
