package hmrt

import (
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
	zkbound "github.com/taurusgroup/two-party-rsa/pkg/zk/bound"
	zkddh "github.com/taurusgroup/two-party-rsa/pkg/zk/ddh"
	zkdlog "github.com/taurusgroup/two-party-rsa/pkg/zk/dlog"
	zkenc "github.com/taurusgroup/two-party-rsa/pkg/zk/enc"
	zkmod "github.com/taurusgroup/two-party-rsa/pkg/zk/mod"
	zkreduce "github.com/taurusgroup/two-party-rsa/pkg/zk/reduce"
)

// Capabilities are the proof systems the protocol relies on.
// The engine only ever calls Prove and Verify on them.
type Capabilities struct {
	DLog       zk.System[zkdlog.Public, zkdlog.Private, *zkdlog.Proof]
	CorrectKey zk.System[zkmod.Public, zkmod.Private, *zkmod.Proof]
	Encryption zk.System[zkenc.Public, zkenc.Private, *zkenc.Proof]
	Range      zk.System[zkbound.Public, zkbound.Private, *zkbound.Proof]
	Reduction  zk.System[zkreduce.Public, zkreduce.Private, *zkreduce.Proof]
	DDH        zk.System[zkddh.Public, zkddh.Private, *zkddh.Proof]
}

// DefaultCapabilities returns the proof systems of this module, spreading their work over pl.
func DefaultCapabilities(pl *pool.Pool) Capabilities {
	return Capabilities{
		DLog:       zkdlog.System{},
		CorrectKey: zkmod.System{Pool: pl},
		Encryption: zkenc.System{},
		Range:      zkbound.System{Pool: pl},
		Reduction:  zkreduce.System{Pool: pl},
		DDH:        zkddh.System{},
	}
}
