// Package models defines the core data structures for users, batches,
// and supply-chain events shared by the client and the API server.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies what a registered wallet is allowed to do.
// The numeric values mirror the on-chain role registry (0 is "none").
type Role uint8

const (
	// RoleNone is the zero value; an unregistered wallet.
	RoleNone Role = iota
	// RoleCollector records new herb batches at origin.
	RoleCollector
	// RoleAggregator consolidates batches from collectors.
	RoleAggregator
	// RoleProcessor cleans, dries, and extracts.
	RoleProcessor
	// RoleManufacturer produces the finished product.
	RoleManufacturer
	// RoleAdmin reads aggregate statistics.
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleNone:         "none",
	RoleCollector:    "collector",
	RoleAggregator:   "aggregator",
	RoleProcessor:    "processor",
	RoleManufacturer: "manufacturer",
	RoleAdmin:        "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is one of the registrable roles.
func (r Role) Valid() bool {
	return r >= RoleCollector && r <= RoleAdmin
}

// ParseRole maps the wire representation of a role to its Role value.
// Returns an error for anything outside the closed set.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if r != RoleNone && name == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// NodeType identifies the downstream supply-chain stage logging an event.
// Values are the uint8 indexes the contract's logEvent expects.
type NodeType uint8

const (
	NodeAggregator   NodeType = 1
	NodeProcessor    NodeType = 2
	NodeManufacturer NodeType = 3
)

var nodeNames = map[NodeType]string{
	NodeAggregator:   "aggregator",
	NodeProcessor:    "processor",
	NodeManufacturer: "manufacturer",
}

func (n NodeType) String() string {
	if name, ok := nodeNames[n]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether n is one of the three downstream stages.
func (n NodeType) Valid() bool {
	return n >= NodeAggregator && n <= NodeManufacturer
}

// NodeTypeForRole maps a downstream role to its event node type.
// Collector and admin have no node type; ok is false for them.
func NodeTypeForRole(r Role) (NodeType, bool) {
	switch r {
	case RoleAggregator:
		return NodeAggregator, true
	case RoleProcessor:
		return NodeProcessor, true
	case RoleManufacturer:
		return NodeManufacturer, true
	default:
		return 0, false
	}
}

// ParseNodeType maps the wire representation of a node type to its value.
func ParseNodeType(s string) (NodeType, error) {
	for n, name := range nodeNames {
		if name == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// NormalizeAddress lower-cases a wallet address so it can serve as a
// stable primary key regardless of checksum casing.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// User is a registered participant keyed by wallet address.
type User struct {
	// WalletAddress is the lower-cased hex address; the primary key.
	WalletAddress string `json:"walletAddress"`
	// Role is fixed at registration; changes are an external concern.
	Role string `json:"role"`
	// Name is the display name shown on trail steps.
	Name string `json:"name"`
	// Location is an optional free-text home location.
	Location string `json:"location,omitempty"`
	// CreatedAt is set by the backend on registration.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Batch statuses as they advance through the chain.
const (
	StatusCollected  = "collected"
	StatusAggregated = "aggregated"
	StatusProcessed  = "processed"
	StatusCompleted  = "completed"
)

// Batch is one herb collection event at origin. Immutable once created;
// only Status advances server-side as downstream events accrue.
type Batch struct {
	BatchID          string    `json:"batchId"`
	HerbName         string    `json:"herbName"`
	HerbLatin        string    `json:"herbLatin,omitempty"`
	QuantityKg       float64   `json:"quantityKg"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	LocationName     string    `json:"locationName,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	TxHash           string    `json:"txHash,omitempty"`
	Status           string    `json:"status"`
	CollectorAddress string    `json:"collectorAddress"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Event is one downstream action against an existing batch.
// GPS is supplementary here, unlike batch creation.
type Event struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batchId"`
	NodeType     string    `json:"nodeType"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	LocationName string    `json:"locationName,omitempty"`
	Notes        string    `json:"notes"`
	TxHash       string    `json:"txHash,omitempty"`
	ActorAddress string    `json:"actorAddress"`
	ActorName    string    `json:"actorName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TrailLocation is the geolocation attached to a trail step.
type TrailLocation struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Name      string   `json:"name,omitempty"`
}

// TrailStep is one entry of a batch's journey, ordered by occurrence
// time ascending ("step 1" is the original collection).
type TrailStep struct {
	Step      int           `json:"step"`
	NodeType  string        `json:"nodeType"`
	ActorName string        `json:"actorName"`
	Timestamp time.Time     `json:"timestamp"`
	Location  TrailLocation `json:"location"`
	Notes     string        `json:"notes,omitempty"`
	TxHash    string        `json:"txHash,omitempty"`
}

// VerifyResult is the consumer-facing verification payload.
type VerifyResult struct {
	Verified        bool        `json:"verified"`
	BatchID         string      `json:"batchId"`
	HerbName        string      `json:"herbName"`
	HerbLatin       string      `json:"herbLatin,omitempty"`
	QuantityKg      float64     `json:"quantityKg"`
	Status          string      `json:"status"`
	OnChainVerified bool        `json:"onChainVerified"`
	Trail           []TrailStep `json:"trail"`
	Summary         string      `json:"summary,omitempty"`
}

// Stats is the admin aggregate view.
type Stats struct {
	TotalBatches int64            `json:"totalBatches"`
	TotalEvents  int64            `json:"totalEvents"`
	ByStatus     map[string]int64 `json:"byStatus"`
}
