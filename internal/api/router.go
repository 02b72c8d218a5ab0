// api/router.go
package api

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(storage *Storage) *gin.Engine {
	r := gin.Default()

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta", MetaListHandler(storage))
		apiGroup.GET("/meta/:class", MetaClassHandler(storage))

		apiGroup.POST("/classes/:class/instances", CreateHandler(storage))

		apiGroup.GET("/instances", ListHandler(storage))
		apiGroup.GET("/instances/:id", GetOneHandler(storage))
		apiGroup.PATCH("/instances/:id", UpdatePartialHandler(storage))
		apiGroup.DELETE("/instances/:id", DeleteHandler(storage))
		apiGroup.GET("/instances/:id/diff/:other", DiffHandler(storage))
		apiGroup.POST("/instances/:id/apply", ApplyHandler(storage))
	}

	return r
}
