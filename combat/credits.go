package combat

import (
	"fmt"
	"sync"
)

// CreditType names one of the two regenerating counters of a combatant.
type CreditType int

// Credit types.
const (
	CreditAttack CreditType = iota
	CreditDefense
)

func (t CreditType) String() string {
	switch t {
	case CreditAttack:
		return "Attack"
	case CreditDefense:
		return "Defense"
	default:
		return fmt.Sprintf("CreditType(%d)", int(t))
	}
}

type counter struct {
	value     int
	max       int
	restoring bool
}

// A CreditPool holds the attack and defense credits of a combatant. Values
// stay within [0, max]: consuming more than is available clamps at zero.
type CreditPool struct {
	lock     sync.Mutex
	counters [2]counter
}

// NewCreditPool creates a full pool.
func NewCreditPool(maxAttack, maxDefense int) *CreditPool {
	p := new(CreditPool)
	p.counters[CreditAttack] = counter{value: maxAttack, max: maxAttack}
	p.counters[CreditDefense] = counter{value: maxDefense, max: maxDefense}

	return p
}

func (p *CreditPool) counter(t CreditType) *counter {
	if t != CreditAttack && t != CreditDefense {
		panic(fmt.Sprintf("unknown credit type %d", int(t)))
	}

	return &p.counters[t]
}

// Credits returns the current number of credits of type t.
func (p *CreditPool) Credits(t CreditType) int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.counter(t).value
}

// Max returns the maximum number of credits of type t.
func (p *CreditPool) Max(t CreditType) int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.counter(t).max
}

// Consume removes up to amount credits and returns how many were actually
// removed.
func (p *CreditPool) Consume(t CreditType, amount int) int {
	if amount <= 0 {
		return 0
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	c := p.counter(t)
	consumed := min(amount, c.value)
	c.value -= consumed

	return consumed
}

// TryConsume removes amount credits only if all of them are available.
func (p *CreditPool) TryConsume(t CreditType, amount int) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	c := p.counter(t)
	if amount < 0 || c.value < amount {
		return false
	}

	c.value -= amount

	return true
}

// Restore adds up to amount credits without passing the maximum and returns
// how many were actually added.
func (p *CreditPool) Restore(t CreditType, amount int) int {
	if amount <= 0 {
		return 0
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	c := p.counter(t)
	restored := min(amount, c.max-c.value)
	c.value += restored

	return restored
}

// BeginRestoration claims the restoration chain of type t. It returns false
// if a chain is already running or the pool is full, in which case the
// caller must not schedule another restore.
func (p *CreditPool) BeginRestoration(t CreditType) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	c := p.counter(t)
	if c.restoring || c.value >= c.max {
		return false
	}

	c.restoring = true

	return true
}

// EndRestoration releases the restoration chain of type t.
func (p *CreditPool) EndRestoration(t CreditType) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.counter(t).restoring = false
}

// IsRestoring tells if a restoration chain of type t is running.
func (p *CreditPool) IsRestoring(t CreditType) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.counter(t).restoring
}
