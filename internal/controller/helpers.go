package controller

import (
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径中的数字 id，非法时直接返回 404
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.NotFound(ctx)
		return 0, false
	}
	return id, true
}
