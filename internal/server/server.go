package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/franckalain/nutritrack/internal/config"
	"github.com/franckalain/nutritrack/internal/database"
	"github.com/franckalain/nutritrack/internal/goals"
	"github.com/franckalain/nutritrack/internal/meals"
	"github.com/franckalain/nutritrack/internal/ml"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

// message is the envelope every client frame uses.
type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Server struct {
	db         database.DB
	model      ml.Model
	reconciler *meals.Reconciler
	live       *config.Live
	clients    sync.Map
}

func New(db database.DB, model ml.Model, live *config.Live) *Server {
	if live.Get().Server.Debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Debug logging enabled")
	}
	return &Server{
		db:         db,
		model:      model,
		reconciler: meals.NewReconciler(model),
		live:       live,
	}
}

// Handler returns the HTTP routes: /ws, /health and static files.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

func (s *Server) Start(port, staticDir string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{Addr: ":" + port, Handler: s.Handler(staticDir)}
	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}
	log.Println("Shutting down server...")
	return srv.Shutdown(context.Background())
}

func (s *Server) debug() bool {
	return s.live.Get().Server.Debug
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	s.clients.Store(clientID, conn)
	defer s.clients.Delete(clientID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Error reading message:", err)
			}
			break
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Println("Error parsing message:", err)
			s.sendError(conn, "Invalid message format")
			continue
		}

		s.handleWebSocketMessage(r.Context(), conn, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, msg message) {
	if s.debug() {
		log.Printf("Received %s message: %s", msg.Type, msg.Data)
	}

	switch msg.Type {
	case "analyze_meal":
		s.handleAnalyzeMeal(ctx, conn, msg.Data)
	case "get_meal":
		s.handleGetMeal(ctx, conn, msg.Data)
	case "list_meals":
		s.handleListMeals(ctx, conn, msg.Data)
	case "update_item":
		s.handleUpdateItem(ctx, conn, msg.Data)
	case "bulk_edit":
		s.handleBulkEdit(ctx, conn, msg.Data)
	case "delete_meal":
		s.handleDeleteMeal(ctx, conn, msg.Data)
	case "daily_summary":
		s.handleDailySummary(ctx, conn, msg.Data)
	case "calculate_goals":
		s.handleCalculateGoals(ctx, conn, msg.Data)
	case "":
		s.sendError(conn, "Invalid message format")
	default:
		s.sendError(conn, "Unknown message type")
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	if s.debug() {
		log.Printf("Sending message to client - Type: %s, Data: %+v", messageType, data)
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending message:", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	s.sendErrorWith(conn, message, nil)
}

func (s *Server) sendErrorWith(conn *websocket.Conn, message string, extra map[string]any) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	for k, v := range extra {
		msg[k] = v
	}

	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending error message:", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// sendGoalError reports a goal calculation failure with its field list.
func (s *Server) sendGoalError(conn *websocket.Conn, err error) {
	var verr *goals.ValidationError
	if errors.As(err, &verr) {
		s.sendErrorWith(conn, "Invalid input parameters", map[string]any{
			"validation": goals.Report{Valid: false, Errors: verr.Errors, Warnings: nonNil(verr.Warnings)},
		})
		return
	}
	log.Printf("Error calculating goals: %v", err)
	s.sendError(conn, "Failed to calculate goals")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
