package models

import (
	"github.com/samber/lo"
)

// MergeContractTypes returns a new contract type whose ABI is the union of base and
// incoming, keyed by entry identity. Base entries keep their order and come first;
// incoming entries that are new are appended in their own order. For scalar fields
// base wins whenever it has a value.
func MergeContractTypes(base, incoming ContractType) ContractType {
	merged := base.Clone()
	extra := incoming.Clone()

	union := lo.UniqBy(append(merged.ABI, extra.ABI...), func(e ABIEntry) string {
		return e.Identity()
	})
	if len(union) > 0 {
		merged.ABI = union
	}

	if merged.Name == "" {
		merged.Name = extra.Name
	}
	if merged.SourceID == "" {
		merged.SourceID = extra.SourceID
	}
	if len(merged.DeploymentBytecode) == 0 {
		merged.DeploymentBytecode = extra.DeploymentBytecode
	}
	if len(merged.RuntimeBytecode) == 0 {
		merged.RuntimeBytecode = extra.RuntimeBytecode
	}

	return merged
}
