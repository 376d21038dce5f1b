package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/simulator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const submitTimeout = 30 * time.Second

// StreamMessage is exchanged over the simulation websocket
type StreamMessage struct {
	Type       string                   `json:"type"`
	Stage      string                   `json:"stage,omitempty"`
	Student    *models.StudentProfile   `json:"student,omitempty"`
	Submission *models.Submission       `json:"submission,omitempty"`
	Result     *models.SimulationResult `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// handleSimulationStream runs one simulation and reports each stage as it starts
func (s *Server) handleSimulationStream(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(submitTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		logger.Debug("websocket closed before submit", "error", err)
		return
	}

	var msg StreamMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Type != "submit" || msg.Submission == nil {
		s.sendStreamError(conn, `expected {"type":"submit", "student":..., "submission":...}`)
		return
	}

	var student models.StudentProfile
	if msg.Student != nil {
		student = *msg.Student
	}

	logger.Info("simulation stream started", "scenario_id", msg.Submission.ScenarioID)

	result, err := s.engine.RunSimulation(r.Context(), student, *msg.Submission,
		simulator.WithProgress(func(stage string) {
			s.sendStreamMessage(conn, StreamMessage{Type: "stage", Stage: stage})
		}),
	)
	if err != nil {
		s.sendStreamError(conn, err.Error())
		return
	}

	s.sendStreamMessage(conn, StreamMessage{Type: "result", Result: &result})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
}

func (s *Server) sendStreamMessage(conn *websocket.Conn, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) sendStreamError(conn *websocket.Conn, message string) {
	s.sendStreamMessage(conn, StreamMessage{Type: "error", Error: message})
}
