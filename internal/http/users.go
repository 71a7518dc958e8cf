package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"userhub/internal/domain"
	"userhub/internal/usecase"
)

const (
	defaultPage = 1
	defaultSize = 10
)

var errUserNotFound = domain.NewNotFoundError("User not found")

// userBody keeps raw JSON values so the use cases can validate their types.
type userBody struct {
	Email any `json:"email"`
	Name  any `json:"name"`
}

func (h *Handler) bindUserBody(c *gin.Context) (userBody, bool) {
	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.abortWithError(c, errInvalidBody)
		return body, false
	}
	return body, true
}

func (h *Handler) getUser(c *gin.Context) {
	res, err := h.users.Get.Execute(c.Request.Context(), usecase.GetUserInput{ID: c.Param("id")})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if res.User == nil {
		h.abortWithError(c, errUserNotFound)
		return
	}
	respond(c, http.StatusOK, res.User)
}

func (h *Handler) createUser(c *gin.Context) {
	body, ok := h.bindUserBody(c)
	if !ok {
		return
	}
	res, err := h.users.Create.Execute(c.Request.Context(), usecase.CreateUserInput{Email: body.Email, Name: body.Name})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, res.User)
}

func (h *Handler) updateUser(c *gin.Context) {
	body, ok := h.bindUserBody(c)
	if !ok {
		return
	}
	res, err := h.users.Update.Execute(c.Request.Context(), usecase.UpdateUserInput{
		ID:    c.Param("id"),
		Email: body.Email,
		Name:  body.Name,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if res.User == nil {
		h.abortWithError(c, errUserNotFound)
		return
	}
	respond(c, http.StatusOK, res.User)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete.Execute(c.Request.Context(), usecase.DeleteUserInput{ID: c.Param("id")}); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listUsers reads the leading integer of page and size, so "2.5" is page 2. A
// missing, non-numeric or zero value falls back to the default.
func (h *Handler) listUsers(c *gin.Context) {
	res, err := h.users.List.Execute(c.Request.Context(), usecase.ListUsersInput{
		Page: queryInt(c, "page", defaultPage),
		Size: queryInt(c, "size", defaultSize),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// queryInt returns a float64 so values beyond int range still reach validation.
func queryInt(c *gin.Context, key string, fallback int) any {
	n, ok := leadingInt(c.Query(key))
	if !ok || n == 0 {
		return fallback
	}
	return n
}

// leadingInt parses an optional sign and the digits that follow it, ignoring
// leading whitespace and anything after the digits.
func leadingInt(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return sign * n, true
}
