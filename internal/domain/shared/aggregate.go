package shared

// AggregateRoot is an entity that owns a consistency boundary and buffers
// the events it raises until the application layer publishes them.
type AggregateRoot interface {
	Entity
	GetVersion() int
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot is embedded by purchase orders and department services.
// Version is the optimistic-lock token: repositories only save when the stored
// version still matches and then bump it.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// Copy detaches the pending event buffer so appends on the copy never show up
// on the original.
func (a BaseAggregateRoot) Copy() BaseAggregateRoot {
	if len(a.pending) > 0 {
		a.pending = append([]DomainEvent(nil), a.pending...)
	}
	return a
}
