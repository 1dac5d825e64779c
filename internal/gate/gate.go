package gate

import (
	"fmt"
	"sync"
	"time"

	"github.com/aurasys/reflex-engine/internal/decision"
)

// #region gate

// Gate rate-limits adaptation decisions per session and adaptation type,
// and rejects decisions below the confidence floor. Only an admitted
// decision is persisted and applied to the layout tree.
//
// Cooldown state is held in memory so the same session's next decision
// sees its predecessor immediately, ahead of any asynchronous persistence.
type Gate struct {
	config Config

	mu       sync.Mutex
	admitted map[string]map[decision.AdaptationType]time.Time
}

// NewGate creates a gate with the given policy.
func NewGate(config Config) *Gate {
	return &Gate{
		config:   config,
		admitted: make(map[string]map[decision.AdaptationType]time.Time),
	}
}

// #endregion gate

// #region admit

// Admit checks the confidence floor first, then the per-type cooldown for
// the session. An admitted decision starts (or restarts) its type's
// cooldown window at now.
func (g *Gate) Admit(sessionID string, d decision.Decision, now time.Time) Result {
	if d.Confidence < g.config.MinConfidence {
		return Result{
			Admitted: false,
			Reason:   fmt.Sprintf("confidence %.2f below floor %.2f", d.Confidence, g.config.MinConfidence),
		}
	}

	cooldown, ok := g.config.Cooldowns[d.Type]
	if !ok {
		cooldown = g.config.DefaultCooldown
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	types, ok := g.admitted[sessionID]
	if !ok {
		types = make(map[decision.AdaptationType]time.Time)
		g.admitted[sessionID] = types
	}

	if last, ok := types[d.Type]; ok {
		if elapsed := now.Sub(last); elapsed < cooldown {
			return Result{
				Admitted: false,
				Reason: fmt.Sprintf("%s in cooldown: %.0fs of %.0fs elapsed",
					d.Type, elapsed.Seconds(), cooldown.Seconds()),
			}
		}
	}

	types[d.Type] = now
	return Result{Admitted: true, Reason: fmt.Sprintf("admitted %s", d.Type)}
}

// #endregion admit

// #region forget

// Forget releases cooldown state for an ended session.
func (g *Gate) Forget(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.admitted, sessionID)
}

// #endregion forget
