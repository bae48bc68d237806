package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 部署在网关之后,Origin 校验由网关完成
		return true
	},
}

// WebSocketHandler WebSocket 处理器
// 身份认证由上游网关完成,这里只读取网关注入的用户标识
func WebSocketHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 读取用户标识
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = c.Query("userId")
		}
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
			return
		}

		// 2. 升级连接
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
			return
		}

		// 3. 创建并注册客户端
		client := NewClient(
			uuid.New().String(),
			userID,
			hub,
			conn,
		)
		hub.Register <- client

		// 4. 启动 readPump 和 writePump
		go client.ReadPump()
		go client.WritePump()
	}
}
