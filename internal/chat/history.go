// Package chat implements the tool-orchestration conversation loop:
// it drives the multi-turn exchange between a user, the language-model
// service, and the registered tools.
package chat

import (
	"github.com/campuslink/campuslink/internal/provider"
)

// NormalizeHistory reshapes client-supplied prior turns into the
// canonical sequence the model service accepts:
//
//   - turns with an unknown role or no parts are dropped
//   - when limit > 0, only the most recent limit turns are kept
//   - leading turns are dropped until the first user turn, because a
//     conversation cannot be replayed to the model starting on a model turn
//
// Relative order is preserved and no error is ever returned; corrupt
// history degrades to a shorter (possibly empty) one so the chat stays
// answerable. The function is idempotent.
func NormalizeHistory(turns []provider.Turn, limit int) []provider.Turn {
	valid := make([]provider.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role != provider.RoleUser && t.Role != provider.RoleModel {
			continue
		}
		if len(t.Parts) == 0 {
			continue
		}
		valid = append(valid, t)
	}

	if limit > 0 && len(valid) > limit {
		valid = valid[len(valid)-limit:]
	}

	for len(valid) > 0 && valid[0].Role != provider.RoleUser {
		valid = valid[1:]
	}

	return valid
}
