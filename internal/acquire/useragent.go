package acquire

import "sync/atomic"

// defaultUserAgent identifies the basic fetcher honestly.
const defaultUserAgent = "Mozilla/5.0 (compatible; ScrapeEngine/1.0)"

// browserAgents is the fixed rotation pool used under stealth mode.
var browserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// AgentPool rotates user agents round-robin. Safe for concurrent use.
type AgentPool struct {
	agents []string
	next   atomic.Uint64
}

// NewAgentPool creates a pool over the given agents, defaulting to the
// built-in browser set when empty.
func NewAgentPool(agents []string) *AgentPool {
	if len(agents) == 0 {
		agents = browserAgents
	}
	return &AgentPool{agents: agents}
}

// Next returns the next agent in rotation.
func (p *AgentPool) Next() string {
	n := p.next.Add(1) - 1
	return p.agents[n%uint64(len(p.agents))]
}
