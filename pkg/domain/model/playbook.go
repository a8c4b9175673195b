package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Step is a playbook's unit of remediation work. Steps are immutable
// once the playbook is active; fixing a step means deprecating the
// playbook and creating a new one.
type Step struct {
	ID          types.StepID
	Description string
	Order       int
}

// Playbook is an ordered remediation procedure template matched against
// alerts by threat type and severity.
type Playbook struct {
	ID            types.PlaybookID
	TenantID      types.TenantID
	Name          string
	Description   string
	ThreatType    types.Category
	SeverityLevel types.Severity
	Steps         []Step
	Status        types.PlaybookStatus
	IsTemplate    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// Validate checks required fields, enumeration membership, and that
// steps form a contiguous 1-based order.
func (p *Playbook) Validate() error {
	if p.Name == "" {
		return goerr.New("playbook name is required")
	}
	if err := p.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}
	if !p.ThreatType.IsValid() {
		return goerr.New("invalid playbook threat type", goerr.V("threat_type", p.ThreatType))
	}
	if !p.SeverityLevel.IsValid() {
		return goerr.New("invalid playbook severity level", goerr.V("severity_level", p.SeverityLevel))
	}
	if !p.Status.IsValid() {
		return goerr.New("invalid playbook status", goerr.V("status", p.Status))
	}
	if len(p.Steps) == 0 {
		return goerr.New("playbook requires at least one step")
	}
	seen := make(map[int]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.Description == "" {
			return goerr.New("step description is required", goerr.V("order", step.Order))
		}
		if step.Order < 1 || step.Order > len(p.Steps) || seen[step.Order] {
			return goerr.New("step order must be contiguous and unique", goerr.V("order", step.Order))
		}
		seen[step.Order] = true
	}
	return nil
}

// IsActive reports whether new executions may start from this playbook.
func (p *Playbook) IsActive() bool {
	return p.Status == types.PlaybookStatusActive
}

// HasStep reports whether the playbook contains the given step.
func (p *Playbook) HasStep(id types.StepID) bool {
	for _, step := range p.Steps {
		if step.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the playbook.
func (p *Playbook) Clone() *Playbook {
	clone := *p
	clone.Steps = append([]Step(nil), p.Steps...)
	return &clone
}
