package proxy

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

const (
	opPush1  = 0x60
	opPush4  = 0x63
	opPush20 = 0x73
	opPush32 = 0x7f
)

// matcher recognises one proxy standard
type matcher interface {
	match(code []byte) (models.ProxyInfo, bool)
}

type segmentKind int

const (
	segLiteral    segmentKind = iota
	segTarget                 // exactly 20 bytes of target
	segPushTarget             // PUSHn (n <= 20) followed by n bytes of target, left padded
	segSkip                   // n bytes of anything
	segJumpOffset             // one byte equal to n plus the width of the pushed target
	segTail                   // anything until the end of the code
)

type segment struct {
	kind  segmentKind
	bytes []byte
	n     int
}

func lit(s string) segment { return segment{kind: segLiteral, bytes: hexutil.MustDecode("0x" + s)} }
func target() segment      { return segment{kind: segTarget} }
func pushTarget() segment  { return segment{kind: segPushTarget} }
func skip(n int) segment   { return segment{kind: segSkip, n: n} }
func tail() segment        { return segment{kind: segTail} }

// jumpOffset matches a PUSH1 jump destination that moves with the target push width
func jumpOffset(base int) segment { return segment{kind: segJumpOffset, n: base} }

// templateMatcher matches code laid out exactly as its segments, with the
// target address embedded in the bytecode
type templateMatcher struct {
	proxyType models.ProxyType
	segments  []segment
	// slot is set when the target lives in storage rather than the code
	slot *common.Hash
}

func (m templateMatcher) match(code []byte) (models.ProxyInfo, bool) {
	var addr common.Address
	pos, pushed := 0, common.AddressLength

	for _, seg := range m.segments {
		switch seg.kind {
		case segLiteral:
			if !bytes.HasPrefix(code[pos:], seg.bytes) {
				return models.ProxyInfo{}, false
			}
			pos += len(seg.bytes)
		case segTarget:
			if len(code)-pos < common.AddressLength {
				return models.ProxyInfo{}, false
			}
			addr = common.BytesToAddress(code[pos : pos+common.AddressLength])
			pos += common.AddressLength
		case segPushTarget:
			if pos >= len(code) {
				return models.ProxyInfo{}, false
			}
			op := code[pos]
			if op < opPush1 || op > opPush20 {
				return models.ProxyInfo{}, false
			}
			n := int(op-opPush1) + 1
			if len(code)-pos-1 < n {
				return models.ProxyInfo{}, false
			}
			addr = common.BytesToAddress(code[pos+1 : pos+1+n])
			pos += 1 + n
			pushed = n
		case segJumpOffset:
			if pos >= len(code) || int(code[pos]) != seg.n+pushed {
				return models.ProxyInfo{}, false
			}
			pos++
		case segSkip:
			if len(code)-pos < seg.n {
				return models.ProxyInfo{}, false
			}
			pos += seg.n
		case segTail:
			pos = len(code)
		}
	}
	if pos != len(code) {
		return models.ProxyInfo{}, false
	}

	info := models.ProxyInfo{Type: m.proxyType, Target: addr}
	if m.slot != nil {
		slot := *m.slot
		info.Slot = &slot
	}
	return info, true
}

// codeFacts is what a single opcode-aware pass over the code yields
type codeFacts struct {
	push32 map[common.Hash]bool
	push4  map[[4]byte]bool
}

// scan walks the code opcode by opcode so that PUSH data is never read as an opcode
func scan(code []byte) codeFacts {
	facts := codeFacts{
		push32: make(map[common.Hash]bool),
		push4:  make(map[[4]byte]bool),
	}
	for i := 0; i < len(code); i++ {
		op := code[i]
		if op < opPush1 || op > opPush32 {
			continue
		}
		n := int(op-opPush1) + 1
		if i+n >= len(code) {
			break
		}
		data := code[i+1 : i+1+n]
		switch op {
		case opPush32:
			facts.push32[common.BytesToHash(data)] = true
		case opPush4:
			var sel [4]byte
			copy(sel[:], data)
			facts.push4[sel] = true
		}
		i += n
	}
	return facts
}

// slotMatcher recognises proxies that keep their target in a well-known slot
type slotMatcher struct {
	proxyType models.ProxyType
	slot      common.Hash
	// also lists slots that must be present as well
	also []common.Hash
}

func (m slotMatcher) matchFacts(facts codeFacts) (models.ProxyInfo, bool) {
	if !facts.push32[m.slot] {
		return models.ProxyInfo{}, false
	}
	for _, s := range m.also {
		if !facts.push32[s] {
			return models.ProxyInfo{}, false
		}
	}
	slot := m.slot
	return models.ProxyInfo{Type: m.proxyType, Slot: &slot}, true
}

func (m slotMatcher) match(code []byte) (models.ProxyInfo, bool) {
	return m.matchFacts(scan(code))
}

// selectorMatcher recognises EIP-897 proxies by the selectors they dispatch on
type selectorMatcher struct {
	proxyType models.ProxyType
	selectors [][4]byte
}

func (m selectorMatcher) matchFacts(facts codeFacts) (models.ProxyInfo, bool) {
	for _, sel := range m.selectors {
		if !facts.push4[sel] {
			return models.ProxyInfo{}, false
		}
	}
	return models.ProxyInfo{Type: m.proxyType}, true
}

func (m selectorMatcher) match(code []byte) (models.ProxyInfo, bool) {
	return m.matchFacts(scan(code))
}

func slotPtr(h common.Hash) *common.Hash { return &h }

// matchers in detection order. Templates come first since they are exact.
var matchers = []matcher{
	templateMatcher{
		proxyType: models.ProxyTypeMinimal,
		segments: []segment{
			lit("363d3d373d3d3d363d"), pushTarget(),
			lit("5af43d82803e903d9160"), jumpOffset(0x17), lit("57fd5bf3"),
		},
	},
	templateMatcher{
		proxyType: models.ProxyTypeZeroAge,
		segments:  []segment{lit("3d3d3d3d363d3d37363d73"), target(), lit("5af43d3d93803e602a57fd5bf3")},
	},
	templateMatcher{
		proxyType: models.ProxyTypeClonesPush0,
		segments:  []segment{lit("365f5f375f5f365f73"), target(), lit("5af43d5f5f3e5f3d91602a57fd5bf3")},
	},
	templateMatcher{
		proxyType: models.ProxyTypeSoladyPush0,
		segments:  []segment{lit("5f5f365f5f37365f73"), target(), lit("5af43d5f5f3e6029573d5ffd5b3d5ff3")},
	},
	templateMatcher{
		proxyType: models.ProxyTypeVyper,
		segments:  []segment{lit("366000600037611000600036600073"), target(), lit("5af4602c57600080fd5b6110006000f3")},
	},
	templateMatcher{
		proxyType: models.ProxyTypeCWIA,
		segments: []segment{
			lit("3d3d3d3d363d3d3761"), skip(2), lit("603736393661"), skip(2), lit("013d73"),
			target(), lit("5af43d3d93803e603557fd5bf3"), tail(),
		},
	},
	templateMatcher{
		proxyType: models.ProxyTypeOldCWIA,
		segments: []segment{
			lit("363d3d3761"), skip(2), lit("603836393d3d3d3661"), skip(2), lit("013d73"),
			target(), lit("5af43d82803e903d91603657fd5bf3"), tail(),
		},
	},
	templateMatcher{
		proxyType: models.ProxyTypeSudoswapCWIA,
		segments: []segment{
			lit("3d3d3d3d363d3d37605160353639366051013d73"),
			target(), lit("5af43d3d93803e603357fd5bf3"), tail(),
		},
	},
	templateMatcher{
		proxyType: models.ProxyTypeGnosisSafe,
		segments:  []segment{lit("608060405273ffffffffffffffffffffffffffffffffffffffff600054167fa619486e"), tail()},
		slot:      slotPtr(models.SingletonSlot),
	},
	slotMatcher{proxyType: models.ProxyTypeTransparent, slot: models.ImplementationSlot, also: []common.Hash{models.AdminSlot}},
	slotMatcher{proxyType: models.ProxyTypeBeacon, slot: models.BeaconSlot},
	slotMatcher{proxyType: models.ProxyTypeStandard, slot: models.ImplementationSlot},
	slotMatcher{proxyType: models.ProxyTypeUUPS, slot: models.ProxiableSlot},
	slotMatcher{proxyType: models.ProxyTypeOpenZeppelin, slot: models.ZeppelinOSSlot},
	selectorMatcher{
		proxyType: models.ProxyTypeDelegate,
		selectors: [][4]byte{models.ImplementationSelector, models.ProxyTypeSelector},
	},
}
