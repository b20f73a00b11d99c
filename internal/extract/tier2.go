package extract

import "sync"

// Tier 2 is an in-process specification-aware parser, used only when one
// has been registered. The binary ships without one; embedders that link
// a compliant library register it at startup.

var (
	tier2Mu     sync.RWMutex
	tier2Parser Parser
)

// RegisterTier2 installs an in-process specification-aware parser as the
// second tier of the extraction chain. Passing nil removes it.
// Registration must happen before extractors are constructed.
func RegisterTier2(p Parser) {
	tier2Mu.Lock()
	defer tier2Mu.Unlock()
	tier2Parser = p
}

func registeredTier2() Parser {
	tier2Mu.RLock()
	defer tier2Mu.RUnlock()
	return tier2Parser
}
