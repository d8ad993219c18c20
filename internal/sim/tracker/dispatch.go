package tracker

import (
	"encoding/json"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/protocol"
)

// handleEnvelope dispatches one client-origin frame. Requests are never
// direct mutations: the lifecycle service decides, and only a
// state-changing success emits a SyncPlayer. Failures are absorbed
// without a wire response; corrupt payloads are discarded with a warning.
func (t *Tracker) handleEnvelope(nowTick uint64, env Envelope) {
	kind, payload, err := protocol.Split(env.Frame)
	if err != nil {
		t.log.Printf("discarding frame from %s: %v", env.ConnID, err)
		return
	}
	set := t.sessionFor(env.PlayerID)

	switch kind {
	case protocol.KindStartExpedition:
		var req protocol.StartExpedition
		if err := json.Unmarshal(payload, &req); err != nil {
			t.log.Printf("discarding %s from %s: %v", kind, env.ConnID, err)
			return
		}
		if code := t.svc.Start(set, req.ExpeditionID, nowTick); code != "" {
			t.log.Printf("start %s for %s refused: %s", req.ExpeditionID, env.PlayerID, code)
			return
		}
		t.writeAudit(AuditEntry{Tick: nowTick, Player: env.PlayerID, Action: "START", ExpeditionID: req.ExpeditionID})
		t.syncPlayer(set)

	case protocol.KindConditionProgress:
		var req protocol.ConditionProgress
		if err := json.Unmarshal(payload, &req); err != nil {
			t.log.Printf("discarding %s from %s: %v", kind, env.ConnID, err)
			return
		}
		changed, code := t.svc.ReportProgress(set, req.ConditionID, req.Amount)
		if code != "" || !changed {
			return
		}
		t.writeAudit(AuditEntry{Tick: nowTick, Player: env.PlayerID, Action: "PROGRESS", ConditionID: req.ConditionID, Amount: req.Amount})
		t.syncPlayer(set)

	case protocol.KindCompleteExpedition:
		var req protocol.CompleteExpedition
		if err := json.Unmarshal(payload, &req); err != nil {
			t.log.Printf("discarding %s from %s: %v", kind, env.ConnID, err)
			return
		}
		changed, code := t.svc.Complete(set, req.ExpeditionID)
		if code != "" {
			t.log.Printf("complete %s for %s refused: %s", req.ExpeditionID, env.PlayerID, code)
			return
		}
		if !changed {
			return
		}
		t.writeAudit(AuditEntry{Tick: nowTick, Player: env.PlayerID, Action: "COMPLETE", ExpeditionID: req.ExpeditionID})
		t.syncPlayer(set)

	case protocol.KindClaimRewards:
		var req protocol.ClaimRewards
		if err := json.Unmarshal(payload, &req); err != nil {
			t.log.Printf("discarding %s from %s: %v", kind, env.ConnID, err)
			return
		}
		if code := t.svc.ClaimRewards(set, req.ExpeditionID); code != "" {
			t.log.Printf("claim %s for %s refused: %s", req.ExpeditionID, env.PlayerID, code)
			return
		}
		t.writeAudit(AuditEntry{Tick: nowTick, Player: env.PlayerID, Action: "CLAIM", ExpeditionID: req.ExpeditionID})
		t.syncPlayer(set)

	default:
		t.log.Printf("discarding unexpected %s from %s", kind, env.ConnID)
	}
}
