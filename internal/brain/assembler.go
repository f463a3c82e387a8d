// File path: internal/brain/assembler.go
package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/customer"
	"github.com/commsforge/commsforge/internal/facts"
	"github.com/commsforge/commsforge/internal/policy"
)

// ChannelNames lists every output channel in fixed order.
var ChannelNames = []string{"email", "sms", "app", "letter"}

// SharedContext carries everything a channel generator may read. It is
// assembled exactly once per request; generators receive it by value and
// treat it as read-only.
type SharedContext struct {
	RequestID      string                     `json:"request_id"`
	Letter         string                     `json:"-"`
	Facts          []facts.MandatoryFact      `json:"facts"`
	Classification facts.Classification       `json:"classification"`
	Profile        customer.Profile           `json:"profile"`
	Strategy       Strategy                   `json:"strategy"`
	Decisions      map[string]policy.Decision `json:"decisions"`
	AssembledAt    time.Time                  `json:"assembled_at"`
}

// Assemble builds the shared context for one request. The letter text must
// already be cleaned; facts and classification come from the extraction pass.
func Assemble(letter string, profile customer.Profile, fs []facts.MandatoryFact, cls facts.Classification, pol *policy.Policy) (SharedContext, error) {
	if strings.TrimSpace(letter) == "" {
		return SharedContext{}, fmt.Errorf("assemble: empty letter")
	}
	ctx := SharedContext{
		RequestID:      uuid.NewString(),
		Letter:         letter,
		Facts:          fs,
		Classification: cls,
		Profile:        profile,
		Strategy:       DeriveStrategy(profile),
		AssembledAt:    time.Now().UTC(),
	}
	if pol != nil {
		ctx.Decisions = pol.Evaluate(profile, ChannelNames)
	} else {
		ctx.Decisions = make(map[string]policy.Decision, len(ChannelNames))
		for _, name := range ChannelNames {
			ctx.Decisions[name] = policy.Decision{Enabled: true, Reason: "no policy configured"}
		}
	}
	common.Logger().Info(fmt.Sprintf("brain: context %s assembled facts=%d tone=%s emphasis=%s",
		ctx.RequestID, len(fs), ctx.Strategy.Tone, ctx.Strategy.ChannelEmphasis))
	return ctx, nil
}

// Enabled reports whether the named channel survived policy evaluation.
func (c SharedContext) Enabled(channel string) bool {
	d, ok := c.Decisions[channel]
	return !ok || d.Enabled
}
