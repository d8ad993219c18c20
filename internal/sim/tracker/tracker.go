// Package tracker runs the authoritative expedition loop. All progress
// state is accessed only from the loop goroutine: requests arrive on
// channels and are processed sequentially in arrival order per tick, so a
// given player's progress is never mutated from two sources at once.
package tracker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/protocol"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/expedition"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/progress"
)

type Config struct {
	TickRateHz int
}

// JoinRequest registers a connected peer. Out receives encoded frames;
// the transport owns the channel and drains it until the tracker closes
// it on leave.
type JoinRequest struct {
	ConnID     string
	PlayerID   string
	PlayerName string
	Out        chan []byte
}

// Envelope is one client-origin frame attributed to a connection.
type Envelope struct {
	ConnID   string
	PlayerID string
	Frame    []byte
}

// Store persists progress blobs across reconnects. Load misses return
// ok=false with no error.
type Store interface {
	Load(playerID string) (blob []byte, ok bool, err error)
	Save(playerID string, blob []byte) error
}

// AuditLogger records successful lifecycle mutations. Implemented in
// internal/persistence/log.
type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Tick         uint64 `json:"tick"`
	Player       string `json:"player"`
	Action       string `json:"action"` // e.g. "START"
	ExpeditionID string `json:"expedition_id,omitempty"`
	ConditionID  string `json:"condition_id,omitempty"`
	Amount       int    `json:"amount,omitempty"`
}

type client struct {
	connID   string
	playerID string
	out      chan []byte
}

type Tracker struct {
	cfg Config
	reg *content.Registry
	svc *expedition.Service
	log *log.Logger

	tick atomic.Uint64

	sets    map[string]*progress.Set // by player id
	clients map[string]*client       // by conn id

	store Store       // may be nil
	audit AuditLogger // may be nil

	inbox chan Envelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}
}

func New(cfg Config, reg *content.Registry, svc *expedition.Service, logger *log.Logger) *Tracker {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	return &Tracker{
		cfg:     cfg,
		reg:     reg,
		svc:     svc,
		log:     logger,
		sets:    map[string]*progress.Set{},
		clients: map[string]*client{},
		inbox:   make(chan Envelope, 1024),
		join:    make(chan JoinRequest, 64),
		leave:   make(chan string, 64),
		stop:    make(chan struct{}),
	}
}

func (t *Tracker) SetStore(s Store)             { t.store = s }
func (t *Tracker) SetAuditLogger(l AuditLogger) { t.audit = l }

func (t *Tracker) Inbox() chan<- Envelope   { return t.inbox }
func (t *Tracker) Join() chan<- JoinRequest { return t.join }
func (t *Tracker) Leave() chan<- string     { return t.leave }
func (t *Tracker) CurrentTick() uint64      { return t.tick.Load() }

func (t *Tracker) Stop() { close(t.stop) }

func (t *Tracker) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(t.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingEnvs []Envelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return nil
		case req := <-t.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-t.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-t.inbox:
			pendingEnvs = append(pendingEnvs, env)
		case <-ticker.C:
			t.StepOnce(pendingJoins, pendingLeaves, pendingEnvs)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingEnvs = pendingEnvs[:0]
		}
	}
}

// StepOnce advances one tick with the same ordering as the server loop.
// Exposed for deterministic tests.
func (t *Tracker) StepOnce(joins []JoinRequest, leaves []string, envs []Envelope) uint64 {
	now := t.tick.Load()
	for _, j := range joins {
		t.handleJoin(j)
	}
	for _, id := range leaves {
		t.handleLeave(id)
	}
	for _, e := range envs {
		t.handleEnvelope(now, e)
	}
	t.tick.Store(now + 1)
	return now
}

// handleJoin restores the player's authoritative set and re-establishes
// the peer's mirrors: every fresh connection is treated as stale.
func (t *Tracker) handleJoin(req JoinRequest) {
	if old := t.clients[req.ConnID]; old != nil {
		close(old.out)
	}
	c := &client{connID: req.ConnID, playerID: req.PlayerID, out: req.Out}
	t.clients[req.ConnID] = c

	set := t.sessionFor(req.PlayerID)

	// Unicast mirrors of every known player to the joiner, then broadcast
	// the joiner's own state so allies' mirrors pick the player up.
	for pid, other := range t.sets {
		if pid == req.PlayerID {
			continue
		}
		if frame, _, ok := t.syncFrame(other); ok {
			t.send(c, frame)
		}
	}
	t.syncPlayer(set)
}

func (t *Tracker) handleLeave(connID string) {
	c := t.clients[connID]
	if c == nil {
		return
	}
	delete(t.clients, connID)
	close(c.out)
}

// sessionFor returns the player's progress set, restoring it from the
// store on first sight of the player this session.
func (t *Tracker) sessionFor(playerID string) *progress.Set {
	if set, ok := t.sets[playerID]; ok {
		return set
	}
	set := progress.NewSet(playerID, t.reg)
	if t.store != nil {
		blob, ok, err := t.store.Load(playerID)
		if err != nil {
			t.log.Printf("load progress %s: %v", playerID, err)
		} else if ok {
			if err := set.Deserialize(blob); err != nil {
				t.log.Printf("restore progress %s: %v", playerID, err)
			}
		}
	}
	t.sets[playerID] = set
	return set
}

func (t *Tracker) send(c *client, frame []byte) {
	select {
	case c.out <- frame:
	default:
		// Slow consumer; the transport will resync on reconnect.
		t.log.Printf("dropping frame for %s: out queue full", c.connID)
	}
}

func (t *Tracker) syncFrame(set *progress.Set) (frame, blob []byte, ok bool) {
	blob, err := set.Serialize()
	if err != nil {
		t.log.Printf("serialize progress %s: %v", set.PlayerID(), err)
		return nil, nil, false
	}
	frame, err = protocol.Encode(protocol.KindSyncPlayer, protocol.SyncPlayer{
		ForPlayer:    set.PlayerID(),
		ProgressBlob: blob,
	})
	if err != nil {
		t.log.Printf("encode sync %s: %v", set.PlayerID(), err)
		return nil, nil, false
	}
	return frame, blob, true
}

// syncPlayer broadcasts the player's full state to every connected client
// and persists the blob. Sent after every successful mutation.
func (t *Tracker) syncPlayer(set *progress.Set) {
	frame, blob, ok := t.syncFrame(set)
	if !ok {
		return
	}
	for _, c := range t.clients {
		t.send(c, frame)
	}
	if t.store != nil {
		if err := t.store.Save(set.PlayerID(), blob); err != nil {
			t.log.Printf("save progress %s: %v", set.PlayerID(), err)
		}
	}
}

func (t *Tracker) writeAudit(e AuditEntry) {
	if t.audit == nil {
		return
	}
	if err := t.audit.WriteAudit(e); err != nil {
		t.log.Printf("audit write: %v", err)
	}
}
