package progress

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// fileV1 is the persisted shape of a player's progress set. The same blob
// serves both the save mechanism and the SyncPlayer wire payload.
type fileV1 struct {
	Version  int      `json:"version"`
	PlayerID string   `json:"player_id"`
	Entries  []Record `json:"entries"`
}

const codecVersion = 1

// Serialize encodes the full progress set, orphaned entries included, as
// a zstd-compressed JSON blob. Deserialize of the result reproduces an
// identical set of records.
func (s *Set) Serialize() ([]byte, error) {
	f := fileV1{Version: codecVersion, PlayerID: s.playerID}
	for _, r := range s.All() {
		f.Entries = append(f.Entries, *r)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("progress encode: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

// Deserialize replaces the set's records with the blob's contents.
// Unrecognized entries are not dropped: a record whose definition cannot
// be resolved, or whose stable progress key no longer matches current
// content, is kept and flagged orphaned. The flag is recomputed against
// the current registry on every restore, so a definition that comes back
// un-orphans its record; without a registry the persisted flag stands.
func (s *Set) Deserialize(blob []byte) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return fmt.Errorf("progress decompress: %w", err)
	}
	var f fileV1
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("progress decode: %w", err)
	}
	if f.Version != codecVersion {
		return fmt.Errorf("progress blob version %d, want %d", f.Version, codecVersion)
	}

	s.byID = map[string]*Record{}
	s.order = nil
	for i := range f.Entries {
		r := f.Entries[i]
		if r.ConditionProgress == nil {
			r.ConditionProgress = map[string]int{}
		}
		key := fold(r.ExpeditionID)
		if _, dup := s.byID[key]; dup {
			continue
		}
		if s.reg != nil {
			r.Orphaned = s.isOrphan(r)
		}
		s.byID[key] = &r
		s.order = append(s.order, key)
	}
	return nil
}

// isOrphan detects content drift: missing definition, or a stable key
// derived from a content hash that no longer matches.
func (s *Set) isOrphan(r Record) bool {
	pd, ok := s.reg.ForPlayer(r.ExpeditionID, s.playerID)
	if !ok {
		return true
	}
	return r.StableProgressKey != "" && r.StableProgressKey != pd.StableProgressKey
}
