package websockets

import (
	"context"
	"server/config"
	autosaveController "server/internal/controllers/autosave"
	draftController "server/internal/controllers/drafts"
	"server/internal/database"
	"server/internal/events"
	"server/internal/logger"
	. "server/internal/models"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Message is one autosave event from the wizard client.
type Message struct {
	Type       string `json:"type"`
	Field      string `json:"field,omitempty"`
	Value      any    `json:"value,omitempty"`
	Step       int    `json:"step,omitempty"`
	TotalSteps int    `json:"totalSteps,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Manager owns the autosave websocket sessions. Each connection is one
// wizard tab: the client streams form events in, the session mirrors the
// snapshot, and its autosave controller decides when to persist it. One
// connection is the sole writer of its draft; tabs are not coordinated.
type Manager struct {
	db       database.DB
	eventBus *events.EventBus
	config   config.Config
	drafts   *draftController.DraftController
	interval time.Duration
	log      logger.Logger
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	drafts *draftController.DraftController,
) (*Manager, error) {
	return &Manager{
		db:       db,
		eventBus: eventBus,
		config:   config,
		drafts:   drafts,
		interval: time.Duration(config.AutosaveIntervalSeconds) * time.Second,
		log:      logger.New("websockets"),
	}, nil
}

type session struct {
	mu            sync.Mutex
	applicationID string
	formData      map[string]any
	currentStep   int
	totalSteps    int
}

func (s *session) saveRequest() *SaveDraftRequest {
	out := make(map[string]any, len(s.formData))
	for k, v := range s.formData {
		out[k] = v
	}
	return &SaveDraftRequest{
		ApplicationID: s.applicationID,
		FormData:      out,
		CurrentStep:   s.currentStep,
		TotalSteps:    s.totalSteps,
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	sess := &session{
		applicationID: c.Params("id"),
		formData:      make(map[string]any),
		currentStep:   1,
		totalSteps:    1,
	}

	var writeMu sync.Mutex
	send := func(msgType string, data any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(outbound{Type: msgType, Data: data}); err != nil {
			log.Warn("failed to push autosave message", "type", msgType, "error", err)
		}
	}

	save := func(ctx context.Context) error {
		sess.mu.Lock()
		request := sess.saveRequest()
		sess.mu.Unlock()

		summary, _, err := m.drafts.SaveDraft(ctx, request)
		if err != nil {
			return err
		}

		// First save mints the draft id; carry it into later saves and
		// tell the client.
		sess.mu.Lock()
		created := sess.applicationID == ""
		sess.applicationID = summary.ApplicationID
		sess.mu.Unlock()

		if created {
			send("draft_created", summary)
		}

		return nil
	}

	controller := autosaveController.New(m.interval, save, func(status autosaveController.Status) {
		send("autosave_status", status)
	})
	controller.Start()
	defer controller.Stop()

	log.Info("autosave session opened", "applicationID", sess.applicationID)
	send("autosave_status", controller.Status())

	for {
		var msg Message
		if err := c.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "field_change":
			sess.mu.Lock()
			sess.formData[msg.Field] = msg.Value
			sess.mu.Unlock()
			controller.MarkDirty()
		case "step_change":
			sess.mu.Lock()
			if msg.Step > 0 {
				sess.currentStep = msg.Step
			}
			if msg.TotalSteps > 0 {
				sess.totalSteps = msg.TotalSteps
			}
			sess.mu.Unlock()
			controller.StepChanged(context.Background())
		case "visibility_hidden":
			controller.VisibilityHidden(context.Background())
		case "online":
			controller.SetOnline(context.Background(), true)
		case "offline":
			controller.SetOnline(context.Background(), false)
		case "flush":
			controller.Flush(context.Background())
		default:
			log.Warn("unknown autosave message", "type", msg.Type)
		}
	}

	// Tab closed; one last silent attempt, same as visibility hidden.
	controller.VisibilityHidden(context.Background())
	log.Info("autosave session closed", "applicationID", sess.applicationID)
}
