package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/middleware"
	"github.com/cppla/lifeos/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// requireUser writes a 401 and returns false when the request carries no user.
func requireUser(ctx *gin.Context) (uint, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return userID, ok
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps gamification errors onto the response envelope.
func respondServiceError(ctx *gin.Context, err error, notFoundMsg string, internalCode int, internalMsg string) {
	switch {
	case errors.Is(err, gamification.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, notFoundMsg)
	case errors.Is(err, gamification.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40000, err.Error())
	default:
		utils.Logger.Error(internalMsg, zap.Error(err), zap.String("path", ctx.FullPath()))
		utils.Error(ctx, http.StatusInternalServerError, internalCode, internalMsg)
	}
}

// cleanList sanitizes, trims and de-duplicates free-text tags, dropping empties.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = utils.SanitizeText(v); v != "" {
			out = append(out, v)
		}
	}
	return utils.Unique(out)
}
