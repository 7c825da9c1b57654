package memory

import (
	"time"

	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PolicyCache keeps per-tenant credit policies in memory so the alert path
// does not hit the database on every balance mutation.
type PolicyCache struct {
	cache *cache.Cache
}

func NewPolicyCache() *PolicyCache {
	// Policies change rarely; a short TTL bounds staleness after direct DB edits.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &PolicyCache{
		cache: c,
	}
}

func (r *PolicyCache) Get(tenantId uuid.UUID) (*entity.CreditPolicy, bool) {
	if x, found := r.cache.Get(tenantId.String()); found {
		return x.(*entity.CreditPolicy), true
	}
	return nil, false
}

func (r *PolicyCache) Set(policy *entity.CreditPolicy) {
	r.cache.Set(policy.TenantId.String(), policy, cache.DefaultExpiration)
}

func (r *PolicyCache) Invalidate(tenantId uuid.UUID) {
	r.cache.Delete(tenantId.String())
}
