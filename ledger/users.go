package ledger

import (
	"math/big"

	"github.com/dogecoinw/go-dogecoin/log"
)

// User is a single staking position. All fields are owned by the engine;
// the registry never interprets them.
type User struct {
	Balance              *big.Int
	ForecastedCredits    *big.Int
	LastUpdatedTimestamp int64
	LastClaimedTimestamp int64
	// LastClaimedSlot is the highest history index this user has been paid
	// for; -1 means none. The next claim scan starts just past it.
	LastClaimedSlot int
}

func newUser() *User {
	return &User{
		Balance:           big.NewInt(0),
		ForecastedCredits: big.NewInt(0),
		LastClaimedSlot:   -1,
	}
}

// Registry is the keyed user store plus a dense member list with a 1-based
// reverse index. Removal swaps the target with the last member and pops, so
// every operation stays O(1) regardless of population. Aggregate totals are
// never derived by scanning the registry.
type Registry struct {
	users    map[string]*User
	members  []string
	position map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		users:    make(map[string]*User),
		position: make(map[string]int),
	}
}

// Get returns the stored user or a fresh zero-value record. The zero record
// is not stored; callers persist through Upsert/Register.
func (r *Registry) Get(addr string) *User {
	if u, ok := r.users[addr]; ok {
		return u
	}
	return newUser()
}

func (r *Registry) Has(addr string) bool {
	_, ok := r.position[addr]
	return ok
}

func (r *Registry) Upsert(addr string, u *User) {
	r.users[addr] = u
}

func (r *Registry) Register(addr string, u *User) {
	r.users[addr] = u
	r.members = append(r.members, addr)
	r.position[addr] = len(r.members)
	log.Info("ledger", "register", addr, "members", len(r.members))
}

func (r *Registry) Remove(addr string) {
	pos, ok := r.position[addr]
	if !ok {
		return
	}

	last := len(r.members)
	if pos != last {
		moved := r.members[last-1]
		r.members[pos-1] = moved
		r.position[moved] = pos
	}
	r.members = r.members[:last-1]
	delete(r.position, addr)
	delete(r.users, addr)
	log.Info("ledger", "remove", addr, "members", len(r.members))
}

func (r *Registry) Len() int {
	return len(r.members)
}

// Members returns the dense member list in registration order (modulo
// swap-and-pop moves).
func (r *Registry) Members() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}
