package app

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ActorHeader  = "X-Actor-ID"
	actorKey     = "actorID"
	DefaultActor = "anonymous"
)

// Actor 把调用方标识放进 Context；认证由上游网关负责
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ActorHeader))
		if id == "" {
			id = DefaultActor
		}
		c.Set(actorKey, id)
		c.Next()
	}
}

func ActorID(c *gin.Context) string {
	if id := c.GetString(actorKey); id != "" {
		return id
	}
	return DefaultActor
}
