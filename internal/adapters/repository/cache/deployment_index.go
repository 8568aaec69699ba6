package cache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

const DeploymentsMapFile = "deployments_map.json"

type deploymentsByName = map[string][]models.DeploymentRecord

// DeploymentIndex keeps the ordered deployment history of contract types per
// network. Live networks are persisted to deployments_map.json; records for
// ephemeral networks only live as long as the process.
type DeploymentIndex struct {
	live        *PersistentMap[string, deploymentsByName]
	ephemeral   map[string]deploymentsByName
	isEphemeral func(network string) bool
}

// NewDeploymentIndex opens deployments_map.json under dataDir. An empty dataDir
// keeps every network in memory.
func NewDeploymentIndex(dataDir string, isEphemeral func(string) bool, log *slog.Logger) (*DeploymentIndex, error) {
	var live *PersistentMap[string, deploymentsByName]
	if dataDir == "" {
		live = NewMemoryMap[string, deploymentsByName](StringKeys, log)
	} else {
		var err error
		live, err = NewPersistentMap[string, deploymentsByName](filepath.Join(dataDir, DeploymentsMapFile), StringKeys, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load deployments map: %w", err)
		}
	}
	if isEphemeral == nil {
		isEphemeral = func(string) bool { return false }
	}
	return &DeploymentIndex{
		live:        live,
		ephemeral:   make(map[string]deploymentsByName),
		isEphemeral: isEphemeral,
	}, nil
}

// Append adds record to the end of the history of contractName on network
func (d *DeploymentIndex) Append(contractName, network string, record models.DeploymentRecord) error {
	if network == "" {
		return fmt.Errorf("cannot record deployment of %s without a network", contractName)
	}

	if d.isEphemeral(network) {
		byName := d.ephemeral[network]
		if byName == nil {
			byName = make(deploymentsByName)
			d.ephemeral[network] = byName
		}
		byName[contractName] = append(byName[contractName], record)
		return nil
	}

	current, _ := d.live.Get(network)
	updated := make(deploymentsByName, len(current)+1)
	for name, records := range current {
		updated[name] = slices.Clone(records)
	}
	updated[contractName] = append(updated[contractName], record)

	if err := d.live.Set(network, updated); err != nil {
		return fmt.Errorf("failed to save deployment of %s: %w", contractName, err)
	}
	return nil
}

// GetAll returns the history of contractName on network, oldest first. Never nil.
func (d *DeploymentIndex) GetAll(contractName, network string) []models.DeploymentRecord {
	if network == "" {
		return []models.DeploymentRecord{}
	}

	var records []models.DeploymentRecord
	if d.isEphemeral(network) {
		records = d.ephemeral[network][contractName]
	} else if byName, ok := d.live.Get(network); ok {
		records = byName[contractName]
	}

	out := make([]models.DeploymentRecord, len(records))
	copy(out, records)
	return out
}

// ContractNames lists the contract types with recorded deployments on network
func (d *DeploymentIndex) ContractNames(network string) []string {
	var byName deploymentsByName
	if d.isEphemeral(network) {
		byName = d.ephemeral[network]
	} else {
		byName, _ = d.live.Get(network)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ClearMemory forgets the in-memory records of an ephemeral network
func (d *DeploymentIndex) ClearMemory(network string) {
	delete(d.ephemeral, network)
}

// Clear forgets network entirely, including its persisted records
func (d *DeploymentIndex) Clear(network string) error {
	delete(d.ephemeral, network)
	if d.isEphemeral(network) {
		return nil
	}
	return d.live.Delete(network)
}
