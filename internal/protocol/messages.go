package protocol

// HELLO (client -> server): identifies the peer's player. Everything else
// about transport addressing stays in the transport layer.
type Hello struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
}

// SYNC_PLAYER (server -> clients): full progress blob for one player.
// Receivers apply syncs in arrival order and overwrite; there is no merge.
type SyncPlayer struct {
	ForPlayer    string `json:"for_player"`
	ProgressBlob []byte `json:"progress_blob"`
}

// START_EXPEDITION (client -> server).
type StartExpedition struct {
	ExpeditionID string `json:"expedition_id"`
}

// CONDITION_PROGRESS (client -> server). Amount must be > 0 or the server
// discards the request.
type ConditionProgress struct {
	ConditionID string `json:"condition_id"`
	Amount      int    `json:"amount"`
}

// COMPLETE_EXPEDITION (client -> server).
type CompleteExpedition struct {
	ExpeditionID string `json:"expedition_id"`
}

// CLAIM_REWARDS (client -> server).
type ClaimRewards struct {
	ExpeditionID string `json:"expedition_id"`
}
