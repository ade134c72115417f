package progress

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/raxhvl/genesix/pkgs/catalog"
)

// ShareSnapshot is the shareable slice of a progress record, embedded
// in achievement links.
type ShareSnapshot struct {
	CompletedTasks []catalog.TaskRef `json:"completedTasks"`
	SkippedTasks   []catalog.TaskRef `json:"skippedTasks"`
	Points         uint64            `json:"points"`
}

// EncodeShareToken packs the shareable progress slice into a URL-safe
// token.
func EncodeShareToken(st State) (string, error) {
	snap := ShareSnapshot{
		CompletedTasks: st.CompletedTasks,
		SkippedTasks:   st.SkippedTasks,
		Points:         st.Points,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode share token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeShareToken unpacks a share token back into its snapshot.
func DecodeShareToken(token string) (ShareSnapshot, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return ShareSnapshot{}, fmt.Errorf("malformed share token: %w", err)
	}

	var snap ShareSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ShareSnapshot{}, fmt.Errorf("malformed share token payload: %w", err)
	}

	return snap, nil
}
