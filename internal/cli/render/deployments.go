package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// DeploymentsResult is the deployment history of a contract type on one network
type DeploymentsResult struct {
	ContractName string                    `json:"contractName" yaml:"contractName"`
	Network      string                    `json:"network" yaml:"network"`
	Deployments  []models.DeploymentRecord `json:"deployments" yaml:"deployments"`
}

// DeploymentsRenderer renders deployment histories as tables
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

func (r *DeploymentsRenderer) Render(result *DeploymentsResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintf(r.out, "No deployments of %s on %s\n", result.ContractName, result.Network)
		return nil
	}

	fmt.Fprintf(r.out, "%s on %s\n", nameStyle.Sprint(result.ContractName), faintStyle.Sprint(result.Network))

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Address", "Transaction", "Block"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for i, d := range result.Deployments {
		tx, block := "-", "-"
		if d.TxHash != nil {
			tx = d.TxHash.Hex()
		}
		if d.BlockNumber != nil {
			block = strconv.FormatUint(*d.BlockNumber, 10)
		}
		t.AppendRow(table.Row{i + 1, d.Address.Hex(), tx, block})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
