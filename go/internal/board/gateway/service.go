package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/board"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/rs/zerolog/log"
)

const refreshTimeout = 10 * time.Second

// Service is the live auction gateway: it pushes views and countdowns to
// WebSocket clients and refreshes them when the marketplace publishes events.
type Service struct {
	app               *board.App
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	viewHandler       *ViewHandler
	config            Config
}

// Config holds configuration for the auction gateway service
type Config struct {
	ConnectionConfig ConnectionConfig        `yaml:"websocket"`
	JetStreamConfig  JetStreamConsumerConfig `yaml:"jetstream"`
}

// DefaultConfig returns default configuration for the auction gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// NewService creates a new auction gateway service
func NewService(config Config, app *board.App) *Service {
	s := &Service{
		app:               app,
		connectionManager: NewConnectionManager(config.ConnectionConfig, auction.NewTickSource(app.Clock())),
		config:            config,
	}
	s.wsHandler = NewWebSocketHandler(s.connectionManager, s)
	s.viewHandler = NewViewHandler(app)
	return s
}

// Start consumes marketplace events until ctx is cancelled. Without a
// configured NATS URL the gateway serves snapshots and countdowns only.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway service")

	if s.config.JetStreamConfig.URL == "" {
		log.Warn().Msg("no NATS URL configured, live refresh disabled")
		<-ctx.Done()
		return nil
	}

	consumer, err := NewEventConsumer(s, s.config.JetStreamConfig)
	if err != nil {
		return fmt.Errorf("failed to create event consumer: %w", err)
	}
	defer func() {
		if err := consumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("event consumer failed: %w", err)
	}

	log.Info().Msg("auction gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and REST routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.viewHandler.RegisterRoutes(mux)
	log.Info().Msg("auction gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "auction_gateway"
	stats["status"] = "running"
	return stats
}

// RefreshAuction fetches a fresh snapshot and re-renders it for every
// connection watching auctionID.
func (s *Service) RefreshAuction(ctx context.Context, auctionID string) error {
	conns := s.connectionManager.Connections(auctionID)
	if len(conns) == 0 {
		return nil
	}

	snap, err := s.app.Snapshot(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("refresh auction %s: %w", auctionID, err)
	}

	for _, conn := range conns {
		s.pushView(conn, snap)
	}

	log.Debug().
		Str("auction_id", auctionID).
		Int("connections", len(conns)).
		Msg("auction refreshed")
	return nil
}

// attach sends the first view to a freshly upgraded connection.
func (s *Service) attach(ctx context.Context, conn *Connection) error {
	snap, err := s.app.Snapshot(ctx, conn.AuctionID)
	if err != nil {
		return err
	}
	s.pushView(conn, snap)
	return nil
}

// refreshConnection re-renders a single connection outside of any request.
func (s *Service) refreshConnection(conn *Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.attach(ctx, conn); err != nil {
		log.Error().
			Err(err).
			Str("connection_id", conn.ID).
			Str("auction_id", conn.AuctionID).
			Msg("failed to refresh connection")
	}
}

// pushView sends the personalised view and points the connection's countdown
// at the auction's next phase boundary.
func (s *Service) pushView(conn *Connection, snap *board.Snapshot) {
	now := s.app.Clock().Now()
	view := board.BuildView(now, snap, conn.Viewer.UserID)

	event, err := NewAuctionEvent(conn.AuctionID, EventTypeAuctionView, now, view)
	if err != nil {
		log.Error().Err(err).Str("auction_id", conn.AuctionID).Msg("failed to build view event")
		return
	}
	conn.SendEvent(event)

	prev := conn.swapPhase(view.Status.Phase)

	switch view.Status.Phase {
	case models.PhaseOngoing:
		s.watch(conn, snap.Auction.EndTime, now, true)
	case models.PhaseUpcoming:
		s.watch(conn, snap.Auction.StartTime, now, false)
	case models.PhaseUnavailable:
		conn.Countdown.Clear()
		// report the broken countdown once per view, not on every refresh
		if prev != models.PhaseUnavailable {
			s.send(conn, EventTypeCountdownUnavailable, now, CountdownUnavailablePayload{Label: auction.UnavailableLabel})
		}
	default:
		conn.Countdown.Clear()
	}
}

// watch runs the connection's countdown towards target. Ticks are forwarded
// only for the end of an auction; reaching either boundary re-renders the view.
func (s *Service) watch(conn *Connection, target, now time.Time, forward bool) {
	if !now.Before(target) {
		conn.Countdown.Clear()
		return
	}

	var emit func(models.CountdownState)
	if forward {
		emit = func(state models.CountdownState) {
			s.send(conn, EventTypeCountdownTick, s.app.Clock().Now(), CountdownTickPayload{
				Countdown:        state,
				TimeRemainingSec: state.TotalSeconds(),
				EndsAt:           target,
			})
		}
	}

	cd, err := conn.Countdown.Watch(target, emit)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", conn.ID).
			Str("auction_id", conn.AuctionID).
			Msg("countdown not started")
		return
	}

	go s.awaitBoundary(conn, cd, forward)
}

// awaitBoundary re-renders conn once cd reaches its end. A stopped countdown
// was replaced or torn down and needs nothing.
func (s *Service) awaitBoundary(conn *Connection, cd *auction.Countdown, announce bool) {
	<-cd.Done()
	if !cd.Expired() {
		return
	}

	if announce {
		s.send(conn, EventTypeCountdownEnded, s.app.Clock().Now(), CountdownTickPayload{
			Countdown: models.CountdownState{},
			EndsAt:    cd.End(),
		})
	}
	s.refreshConnection(conn)
}

func (s *Service) send(conn *Connection, eventType EventType, at time.Time, payload interface{}) {
	event, err := NewAuctionEvent(conn.AuctionID, eventType, at, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event")
		return
	}
	conn.SendEvent(event)
}
