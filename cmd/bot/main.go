// Scripted expedition client. Connects as one player, mirrors SyncPlayer
// frames, and drives a start -> report -> claim sequence, inferring
// success purely from mirror changes the way a real client UI has to.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/protocol"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/progress"
)

func main() {
	var (
		url        = flag.String("url", "ws://127.0.0.1:8080/v1/ws", "server websocket url")
		playerID   = flag.String("player", "bot_1", "player id")
		expedition = flag.String("expedition", "expeditions:forest_scout", "expedition to run")
		condition  = flag.String("condition", "item:wood", "deliverable condition to report")
		chunk      = flag.Int("chunk", 10, "amount per progress report")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags)

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send := func(kind protocol.Kind, payload any) {
		frame, err := protocol.Encode(kind, payload)
		if err != nil {
			logger.Fatalf("encode %s: %v", kind, err)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logger.Fatalf("write %s: %v", kind, err)
		}
	}

	send(protocol.KindHello, protocol.Hello{PlayerID: *playerID, PlayerName: "Scripted Bot"})

	// Local mirrors, overwritten wholesale by each sync in arrival order.
	mirrors := map[string]*progress.Set{}
	mirror := func() *progress.Set { return mirrors[*playerID] }

	applySync := func(frame []byte) {
		kind, payload, err := protocol.Split(frame)
		if err != nil || kind != protocol.KindSyncPlayer {
			return
		}
		var sync protocol.SyncPlayer
		if err := json.Unmarshal(payload, &sync); err != nil {
			logger.Printf("discarding corrupt sync: %v", err)
			return
		}
		set := progress.NewSet(sync.ForPlayer, nil)
		if err := set.Deserialize(sync.ProgressBlob); err != nil {
			logger.Printf("discarding sync for %s: %v", sync.ForPlayer, err)
			return
		}
		mirrors[sync.ForPlayer] = set
	}

	// One state pump: reads until the deadline or until want reports true.
	pump := func(want func() bool, timeout time.Duration) bool {
		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			if want() {
				return true
			}
			_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			mt, frame, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err) {
					logger.Fatalf("connection lost: %v", err)
				}
				continue
			}
			if mt == websocket.BinaryMessage {
				applySync(frame)
			}
		}
		return want()
	}

	if !pump(func() bool { return mirror() != nil }, 5*time.Second) {
		logger.Fatalf("no initial sync; server never acknowledged the join")
	}
	logger.Printf("joined with %d known expedition records", mirror().Len())

	send(protocol.KindStartExpedition, protocol.StartExpedition{ExpeditionID: *expedition})
	if !pump(func() bool { return mirror().IsActive(*expedition) }, 5*time.Second) {
		// Failures are silent on the wire; absence of the state change is
		// the only signal.
		logger.Fatalf("start of %s still pending; treating as refused", *expedition)
	}
	logger.Printf("%s active", *expedition)

	for attempts := 0; !mirror().IsCompleted(*expedition); attempts++ {
		if attempts >= 50 {
			logger.Fatalf("no completion after %d reports; giving up", attempts)
		}
		send(protocol.KindConditionProgress, protocol.ConditionProgress{ConditionID: *condition, Amount: *chunk})
		if !pump(func() bool { return mirror().IsCompleted(*expedition) }, 2*time.Second) {
			logger.Printf("reported %s +%d, not complete yet", *condition, *chunk)
		}
	}
	logger.Printf("%s completed", *expedition)

	send(protocol.KindClaimRewards, protocol.ClaimRewards{ExpeditionID: *expedition})
	claimed := func() bool {
		r := mirror().Get(*expedition)
		return r != nil && r.RewardsClaimed
	}
	if !pump(claimed, 5*time.Second) {
		logger.Fatalf("claim still pending; treating as refused")
	}
	logger.Printf("rewards claimed, expedition inactive=%v", !mirror().IsActive(*expedition))
}
