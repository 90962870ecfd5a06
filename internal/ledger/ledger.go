package ledger

import (
	"sync"

	"github.com/blastyard/arena-server/internal/session"
)

// Memory is the default reward ledger: per-player coin and win tallies kept
// in process. Keys are player names, the durable identity supplied at
// connect; session IDs are ephemeral.
type Memory struct {
	mu    sync.Mutex
	coins map[string]int64
	wins  map[string]int64
}

func NewMemory() *Memory {
	return &Memory{coins: make(map[string]int64), wins: make(map[string]int64)}
}

func (m *Memory) CreditCurrency(s session.View, amount int) {
	m.mu.Lock()
	m.coins[s.Name] += int64(amount)
	m.mu.Unlock()
}

func (m *Memory) IncrementWinCount(s session.View) {
	m.mu.Lock()
	m.wins[s.Name]++
	m.mu.Unlock()
}

// BalanceOf reports a player's tallies, for tests and debugging.
func (m *Memory) BalanceOf(player string) (coins, wins int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coins[player], m.wins[player]
}
