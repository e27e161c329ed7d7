package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"
)

// Actor is the authenticated caller. VendorID is the tenant every access is scoped to.
// System actors (CLI commands) have ID 0 and bypass tenancy checks.
type Actor struct {
	ID       uint
	Role     string
	VendorID uint
}

// SystemActor is used by operator commands.
var SystemActor = Actor{Role: "system"}

func (a Actor) isSystem() bool { return a.Role == SystemActor.Role }

// canAccessCustomer reports whether a may read or write records of customer c.
func (a Actor) canAccessCustomer(c *model.Customer) bool {
	switch a.Role {
	case SystemActor.Role:
		return true
	case model.RoleVendor, model.RoleEmployee:
		return c.VendorID == a.VendorID
	case model.RoleCustomer:
		return c.ID == a.ID
	}
	return false
}

// EventPublisher receives ledger events after their transaction commits.
type EventPublisher interface {
	Publish(vendorID uint, event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(uint, string, any) {}

// Ledger events
const (
	EventInvoiceGenerated = "invoice.generated"
	EventPaymentApplied   = "payment.applied"
	EventAdvanceChanged   = "advance.changed"
	EventSaleRecorded     = "sale.recorded"
)

// customerGuard loads a customer and enforces tenancy. Unknown and foreign
// customers both report NotFound so ids cannot be probed across vendors.
func customerGuard(ctx context.Context, parties repository.PartyRepository, actor Actor, customerID uint) (*model.Customer, error) {
	customer, err := parties.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, lookupError(err, "find customer", "customer not found")
	}
	if !actor.canAccessCustomer(customer) {
		return nil, newError(ErrNotFound, "customer not found")
	}
	return customer, nil
}

// asNotFound rewrites a customer NotFound into a NotFound for the dependent record.
func asNotFound(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return err
}

func writeAudit(ctx context.Context, audits repository.AuditRepository, actor Actor, vendorID uint, action string, entityID uint, entityName string, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	return audits.Log(ctx, &model.AuditLog{
		VendorID:   vendorID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityID:   strconv.FormatUint(uint64(entityID), 10),
		EntityName: entityName,
		Details:    string(payload),
	})
}
