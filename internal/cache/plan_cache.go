package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
)

const defaultPlanTTL = 5 * time.Minute

// PlanCache stores plan rows looked up on the admission hot path. Plans are
// reference data that operators edit rarely; the short TTL keeps cap changes
// visible without a database read on every quota check.
type PlanCache struct {
	plans Cache[snowflake.ID, *plandomain.Plan]
	ttl   time.Duration
}

func NewPlanCache() *PlanCache {
	return &PlanCache{
		plans: NewTTLCache[snowflake.ID, *plandomain.Plan](),
		ttl:   defaultPlanTTL,
	}
}

func (c *PlanCache) Get(id snowflake.ID) (*plandomain.Plan, bool) {
	return c.plans.Get(id)
}

func (c *PlanCache) Set(p *plandomain.Plan) {
	if p == nil {
		return
	}
	c.plans.Set(p.ID, p, c.ttl)
}
