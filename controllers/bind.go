package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minipost/utils"
)

// tooLargeReply is what a handler answers when the body hits the size limit.
type tooLargeReply struct {
	status int
	code   int
	detail string
}

var bodyTooLarge = tooLargeReply{http.StatusRequestEntityTooLarge, 41301, "request body too large"}

// bindJSON decodes the request body into dst. On failure it has already
// written a 400 (or 413 for an oversized body) and returns false.
func bindJSON(ctx *gin.Context, dst interface{}, code int) bool {
	return bindJSONLimited(ctx, dst, code, bodyTooLarge)
}

func bindJSONLimited(ctx *gin.Context, dst interface{}, code int, tooLarge tooLargeReply) bool {
	err := ctx.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		utils.Error(ctx, tooLarge.status, tooLarge.code, tooLarge.detail)
		return false
	}
	utils.Error(ctx, http.StatusBadRequest, code, "invalid request payload")
	return false
}
