package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// CreationResult is the creation metadata of an address
type CreationResult struct {
	Address  common.Address          `json:"address" yaml:"address"`
	Creation models.ContractCreation `json:"creation" yaml:"creation"`
}

// CreationRenderer renders contract creation metadata
type CreationRenderer struct {
	out io.Writer
}

// NewCreationRenderer creates a new creation renderer
func NewCreationRenderer(out io.Writer) *CreationRenderer {
	return &CreationRenderer{out: out}
}

func (r *CreationRenderer) Render(result *CreationResult) error {
	c := result.Creation
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Address:"), addressStyle.Sprint(result.Address.Hex()))
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Transaction:"), c.TxHash.Hex())
	fmt.Fprintf(r.out, "%s %d\n", labelStyle.Sprint("Block:"), c.Block)
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Deployer:"), c.Deployer.Hex())
	if c.Factory != nil {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Factory:"), c.Factory.Hex())
	}
	return nil
}
