package query

import (
	"context"
	"time"

	"github.com/galacash/gateway/internal/pkg/metrics"
)

const effectTimeout = 5 * time.Second

// Mutation names a write the gateway can perform.
type Mutation string

const (
	ApproveFundApplication Mutation = "approve_fund_application"
	RejectFundApplication  Mutation = "reject_fund_application"
	CreateFundApplication  Mutation = "create_fund_application"
	ConfirmPayment         Mutation = "confirm_payment"
	RejectPayment          Mutation = "reject_payment"
	PayBill                Mutation = "pay_bill"
	CancelPayment          Mutation = "cancel_payment"
	CreateTransaction      Mutation = "create_transaction"
	UpdateProfile          Mutation = "update_profile"
	ChangePassword         Mutation = "change_password"
	UploadAvatar           Mutation = "upload_avatar"
	Logout                 Mutation = "logout"
)

// Effect is what a successful mutation does to cached state.
type Effect struct {
	// Invalidates lists every namespace whose views can show data derived
	// from what the mutation changed.
	Invalidates []Namespace
	// MergeSession folds the mutation result into the session user.
	MergeSession bool
	// ClearCache drops the whole scope instead of invalidating namespaces.
	ClearCache bool
	// EndSession forces re-authentication.
	EndSession bool
}

// effects is the mutation→invalidation map. It must stay total: a mutation
// that can change a dashboard-visible aggregate invalidates that aggregate
// even if its own response does not carry it.
var effects = map[Mutation]Effect{
	// Approval can generate a ledger transaction.
	ApproveFundApplication: {Invalidates: []Namespace{NSFundApplications, NSBendahara, NSDashboard, NSTransactions}},
	RejectFundApplication:  {Invalidates: []Namespace{NSFundApplications, NSBendahara, NSDashboard, NSTransactions}},
	// A new application moves the treasurer's pending counts.
	CreateFundApplication: {Invalidates: []Namespace{NSFundApplications, NSBendahara, NSDashboard}},

	ConfirmPayment: {Invalidates: []Namespace{NSCashBills, NSTransactions, NSBendahara, NSDashboard}},
	RejectPayment:  {Invalidates: []Namespace{NSCashBills, NSTransactions, NSBendahara, NSDashboard}},
	PayBill:        {Invalidates: []Namespace{NSCashBills, NSBendahara, NSDashboard, NSTransactions}},
	CancelPayment:  {Invalidates: []Namespace{NSCashBills, NSBendahara, NSDashboard, NSTransactions}},

	CreateTransaction: {Invalidates: []Namespace{NSTransactions, NSBendahara, NSDashboard, NSCashBills}},

	UpdateProfile:  {Invalidates: []Namespace{NSUser, NSAuth}, MergeSession: true},
	UploadAvatar:   {Invalidates: []Namespace{NSUser, NSAuth}, MergeSession: true},
	ChangePassword: {Invalidates: []Namespace{NSUser, NSAuth}, ClearCache: true, EndSession: true},

	Logout: {ClearCache: true, EndSession: true},
}

// EffectOf returns the declared effect of m.
func EffectOf(m Mutation) (Effect, bool) {
	e, ok := effects[m]
	return e, ok
}

// Mutations lists every declared mutation.
func Mutations() []Mutation {
	out := make([]Mutation, 0, len(effects))
	for m := range effects {
		out = append(out, m)
	}
	return out
}

// Mutate runs fn exactly once and, on success, applies the mutation's
// cache effect. Cache failures after a successful write are logged, not
// returned: the write already happened. The effect is applied even when
// the caller has gone away in the meantime.
func Mutate[T any](ctx context.Context, c *Client, m Mutation, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(m), "error").Inc()
		c.log.Warn().Err(err).Str("mutation", string(m)).Msg("mutation failed")
		return v, err
	}
	metrics.MutationsTotal.WithLabelValues(string(m), "success").Inc()

	effect, ok := effects[m]
	if !ok {
		c.log.Error().Str("mutation", string(m)).Msg("mutation has no declared effect")
		return v, nil
	}
	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), effectTimeout)
	defer cancel()
	if len(effect.Invalidates) > 0 {
		_ = c.Invalidate(ectx, string(m), effect.Invalidates...)
	}
	if effect.ClearCache {
		_ = c.Clear(ectx, string(m))
	}
	c.log.Info().Str("mutation", string(m)).Msg("mutation applied")
	return v, nil
}
