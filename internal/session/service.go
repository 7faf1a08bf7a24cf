// internal/session/service.go
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/jason-s-yu/park/internal/registry"
	"github.com/jason-s-yu/park/internal/store"
	"github.com/sirupsen/logrus"
)

// Options configures a Service. Zero values get sensible defaults except ProgramID.
type Options struct {
	// ProgramID scopes every derived address of this deployment.
	ProgramID chain.Address
	// SetupAuthority is the only identity allowed to initialize the registry. Without it
	// Initialize always fails.
	SetupAuthority *chain.Address

	Notifier Notifier
	Logger   *logrus.Logger
	Clock    func() time.Time
}

// Service enforces room transitions and drives the ledger. Each operation is one
// store transaction; events are published only after it commits.
type Service struct {
	store     store.Store
	programID chain.Address
	setup     *chain.Address
	notifier  Notifier
	logger    *logrus.Logger
	now       func() time.Time
}

func NewService(st store.Store, opts Options) *Service {
	s := &Service{
		store:     st,
		programID: opts.ProgramID,
		setup:     opts.SetupAuthority,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetOutput(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Initialize creates the deployment's GameRegistry with caller as admin.
func (s *Service) Initialize(ctx context.Context, caller chain.Signer, serverWallet chain.Address) (*models.GameRegistry, error) {
	if caller == nil {
		return nil, game.ErrUnauthorized
	}
	if s.setup == nil {
		return nil, fmt.Errorf("%w: no setup authority configured", game.ErrUnauthorized)
	}
	if caller.Address() != *s.setup {
		return nil, fmt.Errorf("%w: %s is not the setup authority", game.ErrUnauthorized, caller.Address())
	}
	if serverWallet.IsZero() {
		return nil, fmt.Errorf("%w: server wallet required", game.ErrInvalidRequest)
	}

	reg, err := registry.New(s.programID, caller.Address(), serverWallet, s.now())
	if err != nil {
		return nil, err
	}
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertRegistry(ctx, reg)
	})
	if err != nil {
		return nil, fmt.Errorf("initialize registry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"admin":     reg.Admin,
		"server":    reg.ServerWallet,
		"authority": reg.Authority,
	}).Info("game registry initialized")
	return reg, nil
}

// Registry returns the stored GameRegistry.
func (s *Service) Registry(ctx context.Context) (*models.GameRegistry, error) {
	var reg *models.GameRegistry
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		reg, err = tx.GetRegistry(ctx)
		return err
	})
	return reg, err
}

// CreateRewardMint creates the reward token and hands its mint authority to the registry.
func (s *Service) CreateRewardMint(ctx context.Context, caller chain.Signer, meta ledger.Metadata) (ledger.Mint, error) {
	var mint ledger.Mint
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		reg, err := tx.GetRegistry(ctx)
		if err != nil {
			return err
		}
		mint, err = registry.CreateRewardMint(ctx, tx.Ledger(), reg, caller, meta)
		if err != nil {
			return err
		}
		return tx.UpdateRegistry(ctx, reg)
	})
	if err != nil {
		return ledger.Mint{}, fmt.Errorf("create reward mint: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"mint":      mint.Address,
		"authority": mint.Authority,
	}).Info("reward mint created")
	return mint, nil
}

// CreateRoom opens a Waiting room hosted by host.
func (s *Service) CreateRoom(ctx context.Context, host chain.Signer) (*models.Room, error) {
	if host == nil {
		return nil, game.ErrUnauthorized
	}
	room := game.NewRoom(host.Address(), s.now())
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertRoom(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"room": room.ID, "host": room.Host}).Info("room created")
	s.publish(ctx, s.event(models.EventRoomCreated, room, host.Address(), 0))
	return room, nil
}

// GetRoom returns the current state of a room.
func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room *models.Room
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		room, err = tx.GetRoom(ctx, id)
		return err
	})
	return room, err
}

// JoinRoom adds player to a Waiting room.
func (s *Service) JoinRoom(ctx context.Context, id uuid.UUID, player chain.Signer) (*models.Room, error) {
	if player == nil {
		return nil, game.ErrUnauthorized
	}
	var room *models.Room
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		room, err = tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		if err := game.Join(room, player.Address()); err != nil {
			return err
		}
		return tx.UpdateRoom(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("join room %s: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"room":    room.ID,
		"player":  player.Address(),
		"players": len(room.Players),
	}).Info("player joined room")
	s.publish(ctx, s.event(models.EventPlayerJoined, room, player.Address(), 0))
	return room, nil
}

// StartRequest carries the arguments of StartRoom. Host authorizes the entry fee debit
// from FeeFrom directly; the service never holds custody of the fee.
type StartRequest struct {
	RoomID  uuid.UUID
	Host    chain.Signer
	FeeFrom chain.Address
	FeeTo   chain.Address
	FeeMint chain.Address
	Maps    []byte
}

// StartRoom charges one whole fee token from the host and moves the room to Active.
// The transfer and the status change commit together.
func (s *Service) StartRoom(ctx context.Context, req StartRequest) (*models.Room, error) {
	if req.Host == nil {
		return nil, game.ErrUnauthorized
	}
	var room *models.Room
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		room, err = tx.GetRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if err := game.CheckStart(room, req.Host.Address()); err != nil {
			return err
		}

		l := tx.Ledger()
		mint, err := l.GetMint(ctx, req.FeeMint)
		if err != nil {
			return game.WrapLedger("get fee mint", err)
		}
		fee, err := ledger.UnitsPerToken(mint.Decimals)
		if err != nil {
			return game.WrapLedger("entry fee", err)
		}
		if err := l.TransferChecked(ctx, req.FeeFrom, req.FeeTo, req.FeeMint, fee, mint.Decimals, req.Host); err != nil {
			return game.WrapLedger("transfer", err)
		}

		if err := game.Start(room, req.Host.Address(), req.Maps, fee, s.now()); err != nil {
			return err
		}
		return tx.UpdateRoom(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("start room %s: %w", req.RoomID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"room": room.ID,
		"fee":  room.EntryFee,
		"maps": len(room.SelectedMaps),
	}).Info("room started")
	s.publish(ctx, s.event(models.EventRoomStarted, room, req.Host.Address(), room.EntryFee))
	return room, nil
}

// EndRequest carries the settlement of a game: every player's reward in whole tokens.
type EndRequest struct {
	RoomID uuid.UUID
	Caller chain.Signer
	Scores []models.PlayerScore
}

type minted struct {
	player chain.Address
	amount uint64
}

// EndGame settles an Active room in a single call: rewards are minted to each scored
// player through the registry authority and the room becomes Completed. A settled room
// cannot be settled again. Only the registry's server wallet may settle.
func (s *Service) EndGame(ctx context.Context, req EndRequest) (*models.Room, error) {
	if req.Caller == nil {
		return nil, game.ErrUnauthorized
	}
	var (
		room    *models.Room
		rewards []minted
	)
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		rewards = rewards[:0]

		var err error
		room, err = tx.GetRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		reg, err := tx.GetRegistry(ctx)
		if err != nil {
			return err
		}
		if req.Caller.Address() != reg.ServerWallet {
			return fmt.Errorf("%w: settlement must be signed by the server wallet", game.ErrUnauthorized)
		}
		if err := game.CheckComplete(room); err != nil {
			return err
		}
		if err := validateScores(room, req.Scores); err != nil {
			return err
		}

		l := tx.Ledger()
		for _, score := range req.Scores {
			if score.Tokens == 0 {
				continue
			}
			amount, err := registry.MintReward(ctx, l, reg, score.Player, score.Tokens)
			if err != nil {
				return err
			}
			rewards = append(rewards, minted{player: score.Player, amount: amount})
		}

		if err := game.Complete(room, s.now()); err != nil {
			return err
		}
		return tx.UpdateRoom(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("end game %s: %w", req.RoomID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"room":    room.ID,
		"rewards": len(rewards),
	}).Info("room completed")
	for _, r := range rewards {
		s.publish(ctx, s.event(models.EventRewardMinted, room, r.player, r.amount))
	}
	s.publish(ctx, s.event(models.EventRoomCompleted, room, req.Caller.Address(), 0))
	return room, nil
}

// validateScores requires at least one score, each for a distinct player of the room.
// A player owed nothing is listed with zero tokens.
func validateScores(room *models.Room, scores []models.PlayerScore) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: settlement of room %s has no scores", game.ErrInvalidRequest, room.ID)
	}
	seen := make(map[chain.Address]bool, len(scores))
	for _, sc := range scores {
		if !room.HasPlayer(sc.Player) {
			return fmt.Errorf("%w: %s did not play in room %s", game.ErrInvalidRequest, sc.Player, room.ID)
		}
		if seen[sc.Player] {
			return fmt.Errorf("%w: duplicate score for %s", game.ErrInvalidRequest, sc.Player)
		}
		seen[sc.Player] = true
	}
	return nil
}

// ExpireRooms moves every overdue Waiting room to Expired in one transaction.
func (s *Service) ExpireRooms(ctx context.Context) ([]*models.Room, error) {
	now := s.now()
	var expired []*models.Room
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		expired = expired[:0]
		rooms, err := tx.ListOverdueRooms(ctx, now.Unix())
		if err != nil {
			return err
		}
		for _, room := range rooms {
			if err := game.Expire(room, now); err != nil {
				return err
			}
			if err := tx.UpdateRoom(ctx, room); err != nil {
				return err
			}
			expired = append(expired, room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expire rooms: %w", err)
	}

	for _, room := range expired {
		s.logger.WithField("room", room.ID).Info("room expired")
		s.publish(ctx, s.event(models.EventRoomExpired, room, chain.ZeroAddress, 0))
	}
	return expired, nil
}

func (s *Service) event(kind models.EventKind, room *models.Room, actor chain.Address, amount uint64) models.RoomEvent {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return models.RoomEvent{
		ID:        id,
		RoomID:    room.ID,
		Kind:      kind,
		Actor:     actor,
		Amount:    amount,
		Room:      *room.Clone(),
		Timestamp: s.now().UnixMilli(),
	}
}

// publish runs after commit, so a delivery failure cannot undo the operation; it is logged.
func (s *Service) publish(ctx context.Context, ev models.RoomEvent) {
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.WithFields(logrus.Fields{
			"room":  ev.RoomID,
			"event": ev.Kind,
		}).Warnf("failed to publish room event: %v", err)
	}
}
