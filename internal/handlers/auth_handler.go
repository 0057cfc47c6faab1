package handlers

import (
	"net/http"

	"quiz-app/internal/interactor"
	"quiz-app/internal/models"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// checkCredential runs the field validators and returns the failing fields.
func (h *Handler) checkCredential(c *gin.Context, req credentialRequest, withPassword bool) (map[string]string, error) {
	fields := map[string]string{}

	ok, err := h.uc.ValidateEmail.Run(c.Request.Context(), req.Email)
	if err != nil {
		return nil, err
	}
	if !ok {
		fields["email"] = "invalid"
	}

	if withPassword {
		ok, err = h.uc.ValidatePassword.Run(c.Request.Context(), req.Password)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields["password"] = "invalid"
		}
	} else if req.Password == "" {
		fields["password"] = "required"
	}
	return fields, nil
}

func (h *Handler) authenticate(c *gin.Context, withPassword bool, uc *interactor.Interactor[models.Credential, models.Session]) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	fields, err := h.checkCredential(c, req, withPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(fields) > 0 {
		invalidFields(c, fields)
		return
	}

	session, appErr := uc.Run(c.Request.Context(), models.Credential{Email: req.Email, Password: req.Password})
	if appErr != nil {
		h.fail(c, appErr)
		return
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if withPassword {
		status = http.StatusCreated
	}
	c.JSON(status, sessionResponse{Token: token, UserID: session.UserID})
}

func (h *Handler) SignUp(c *gin.Context) {
	h.authenticate(c, true, h.uc.SignUp)
}

func (h *Handler) LogIn(c *gin.Context) {
	h.authenticate(c, false, h.uc.LogIn)
}

func (h *Handler) LogOut(c *gin.Context) {
	if _, err := h.uc.LogOut.Run(c.Request.Context(), service.Unit{}); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AuthState streams the caller's auth state as server-sent events until the
// client disconnects.
func (h *Handler) AuthState(c *gin.Context) {
	ctx := c.Request.Context()

	states := h.uc.ObserveUserAuthState()
	flow := states.Flow(ctx)
	states.Invoke(service.Unit{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-flow:
			if !ok {
				return
			}
			c.SSEvent("state", gin.H{"state": state})
			c.Writer.Flush()
		}
	}
}
