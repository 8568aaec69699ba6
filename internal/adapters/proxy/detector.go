// Package proxy recognises proxy contracts from their runtime bytecode.
package proxy

import (
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

type factsMatcher interface {
	matchFacts(facts codeFacts) (models.ProxyInfo, bool)
}

// Detector identifies the proxy standard a contract implements. It performs no
// I/O: proxies that keep their target in storage (or behind a call) are returned
// with a zero target and the slot to read, and the caller completes them.
type Detector struct{}

// NewDetector creates a new proxy detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the first matching proxy descriptor, or none
func (d *Detector) Detect(code []byte) models.ProxyInfo {
	if len(code) == 0 {
		return models.NoProxy()
	}

	var facts *codeFacts
	for _, m := range matchers {
		if fm, ok := m.(factsMatcher); ok {
			if facts == nil {
				f := scan(code)
				facts = &f
			}
			if info, ok := fm.matchFacts(*facts); ok {
				return info
			}
			continue
		}
		if info, ok := m.match(code); ok {
			return info
		}
	}
	return models.NoProxy()
}
