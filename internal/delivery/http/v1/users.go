package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/go-taskhub/internal/services"
)

func (h *handlerImpl) HandleGetProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}

	user, err := h.users.GetProfile(c, userID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile fetched", newUserResponse(user))
}

type updateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
}

func (h *handlerImpl) HandleUpdateProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}

	var req updateProfileRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.users.UpdateProfile(c, userID, services.UpdateProfileParams{
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated", newUserResponse(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *handlerImpl) HandleChangePassword(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}

	var req changePasswordRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		abort(c, newBadRequestError("old and new passwords are required"))
		return
	}

	err = h.users.ChangePassword(c, userID, req.OldPassword, req.NewPassword)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password changed", nil)
}
