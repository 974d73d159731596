package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/examprep-api/internal/handler/dto"
	"github.com/yourusername/examprep-api/internal/middleware"
	"github.com/yourusername/examprep-api/internal/service"
	"github.com/yourusername/examprep-api/internal/websocket"
)

// WSHandler подключает клиентов к потоку событий учебной сессии
type WSHandler struct {
	studyService *service.StudyService
	wsManager    *websocket.Manager
	upgrader     gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket. allowedOrigins синхронизирован с CORS.
func NewWSHandler(studyService *service.StudyService, wsManager *websocket.Manager, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		studyService: studyService,
		wsManager:    wsManager,
		upgrader:     newUpgrader(allowedOrigins),
	}
}

func newUpgrader(allowedOrigins []string) gorillaws.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Пустой Origin - не браузерный клиент
			if origin == "" {
				return true
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
			return false
		},
		EnableCompression: true,
	}
}

// HandleConnection открывает поток SESSION_STATS для сессии
// GET /api/ws/study/:id
func (h *WSHandler) HandleConnection(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	// Доступ проверяется до апгрейда, чтобы вернуть обычный HTTP-статус
	view, err := h.studyService.Get(userID, sessionID)
	if err != nil {
		handleStudyError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket: error upgrading connection for session %s: %v", sessionID, err)
		return
	}

	client := websocket.NewClient(h.wsManager.Hub(), conn, userID, sessionID.String())
	client.StartPumps(h.wsManager.HandleMessage)

	// Начальный снимок статистики, дальше события идут при каждом ответе
	snapshot := dto.NewStatsResponse(view.Stats)
	if err := client.SendJSON(websocket.SESSION_STATS, gin.H{
		"session_id": sessionID.String(),
		"stats":      snapshot,
		"accuracy":   snapshot.Accuracy,
	}); err != nil {
		log.Printf("WebSocket: failed to send initial stats to %s: %v", client.ConnectionID, err)
	}
}
